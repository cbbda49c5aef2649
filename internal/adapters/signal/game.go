package signal

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/EducaGame/internal/core"
	"github.com/dkeye/EducaGame/internal/domain"
)

type guessPayload struct {
	Letter string `json:"letter" validate:"guessletter"`
}

type solvePayload struct {
	Phrase string `json:"phrase" validate:"solvephrase"`
}

func (ctl *SignalWSController) handleSpin(id domain.ConnID, conn core.SignalConnection) {
	if err := ctl.Orch.Spin(id); err != nil {
		ctl.sendError(conn, errorMessage(err, "Not your turn or invalid state"))
	}
}

func (ctl *SignalWSController) handleGuess(id domain.ConnID, conn core.SignalConnection, data []byte) {
	var p guessPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, errInvalidMessage)
		return
	}
	p.Letter = strings.TrimSpace(p.Letter)
	if err := domain.Validator().Struct(p); err != nil {
		ctl.sendError(conn, "Invalid letter")
		return
	}
	if err := ctl.Orch.Guess(id, p.Letter); err != nil {
		ctl.sendError(conn, errorMessage(err, "Invalid guess or not your turn"))
	}
}

func (ctl *SignalWSController) handleSolve(id domain.ConnID, conn core.SignalConnection, data []byte) {
	var p solvePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, errInvalidMessage)
		return
	}
	p.Phrase = strings.TrimSpace(p.Phrase)
	if p.Phrase == "" {
		ctl.sendError(conn, "Phrase required")
		return
	}
	if err := domain.Validator().Struct(p); err != nil {
		ctl.sendError(conn, "Phrase invalid or too long")
		return
	}
	if err := ctl.Orch.Solve(id, p.Phrase); err != nil {
		ctl.sendError(conn, errorMessage(err, "Invalid solve or not your turn"))
	}
}
