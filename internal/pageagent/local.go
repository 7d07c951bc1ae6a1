package pageagent

import (
	"context"
	"errors"
)

// ErrNotConnected is returned when no agent is attached to the channel.
var ErrNotConnected = errors.New("page agent not connected")

// Local is an in-process Channel. The agent runs on its own goroutine so a
// caller's deadline is honored even while the page is busy.
type Local struct {
	agent *Agent
}

func NewLocal(agent *Agent) *Local {
	return &Local{agent: agent}
}

func (l *Local) Send(ctx context.Context, req Request) (Response, error) {
	if l.agent == nil {
		return Response{}, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	done := make(chan Response, 1)
	go func() {
		done <- l.agent.Handle(req)
	}()

	select {
	case resp := <-done:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
