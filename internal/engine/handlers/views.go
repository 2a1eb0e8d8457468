package handlers

import (
	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

// BoardsMessage переводит снимок стороны в BOARDS_UPDATE.
func BoardsMessage(snap domain.Snapshot) api.ServerMessage {
	return api.ServerMessage{
		Type:          api.MsgBoardsUpdate,
		Side:          snap.Side.String(),
		Phase:         snap.Phase.String(),
		Turn:          snap.Turn.String(),
		OwnBoard:      snap.OwnBoard.Strings(),
		OpponentBoard: snap.OpponentBoard.Strings(),
	}
}
