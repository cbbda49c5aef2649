package signal

import "github.com/dkeye/EducaGame/internal/core"

func (ctl *SignalWSController) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, core.PongEnvelope())
}
