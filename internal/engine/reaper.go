package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"warplanes-server/pkg/logger"
)

// RunReaper периодически удаляет законченные матчи без подключений.
// Незаконченный матч не удаляется никогда, даже если все ушли.
func (s *GameService) RunReaper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Reap(now); n > 0 {
				logger.Log.WithField("reaped", n).Info("Finished matches removed")
			}
		}
	}
}

// Reap удаляет матчи, законченные дольше FinishedTTL назад и без подписчиков.
func (s *GameService) Reap(now time.Time) int {
	s.mu.Lock()
	var victims []*instanceHandle
	for id, h := range s.instances {
		finishedAt, ok := h.FinishedAt()
		if !ok || now.Sub(finishedAt) < s.cfg.FinishedTTL {
			continue
		}
		if s.Hub.SubscriberCount(id) > 0 {
			continue
		}
		delete(s.instances, id)
		victims = append(victims, h)
	}
	s.mu.Unlock()

	for _, h := range victims {
		h.cancel()
		s.Hub.Drop(h.ID)
		logger.Log.WithFields(logrus.Fields{"match": h.ID}).Debug("Match reaped")
	}
	return len(victims)
}

// MatchCount - число живых матчей.
func (s *GameService) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}
