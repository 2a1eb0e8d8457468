package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"warplanes-server/internal/domain"
)

const issuer = "warplanes"

// ErrInvalidSeat - токен не подходит: подпись, срок, матч или сторона.
var ErrInvalidSeat = errors.New("invalid seat token")

// Seat - проверенное право на сторону в матче.
type Seat struct {
	MatchID   string
	Side      domain.Side
	ExpiresAt time.Time
}

type seatClaims struct {
	jwt.RegisteredClaims
	MatchID string `json:"match_id"`
}

// SeatIssuer выдает и проверяет токены мест (HS256).
// Токен позволяет переподключиться к уже занятой стороне.
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSeatIssuer(secret string, ttl time.Duration) *SeatIssuer {
	return &SeatIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue подписывает токен для стороны матча.
func (s *SeatIssuer) Issue(matchID string, side domain.Side) (string, error) {
	if !side.Valid() {
		return "", fmt.Errorf("issue seat: unknown side %d", side)
	}
	now := s.now().UTC()
	claims := seatClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   side.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		MatchID: matchID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat: %w", err)
	}
	return token, nil
}

// Parse проверяет токен и его принадлежность матчу matchID.
func (s *SeatIssuer) Parse(token, matchID string) (Seat, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Seat{}, fmt.Errorf("%w: empty", ErrInvalidSeat)
	}

	var claims seatClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: %w", ErrInvalidSeat, err)
	}

	if claims.MatchID != matchID {
		return Seat{}, fmt.Errorf("%w: token is for another match", ErrInvalidSeat)
	}
	side, err := domain.ParseSide(claims.Subject)
	if err != nil || side == domain.SideNone {
		return Seat{}, fmt.Errorf("%w: bad subject %q", ErrInvalidSeat, claims.Subject)
	}

	return Seat{
		MatchID:   claims.MatchID,
		Side:      side,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
