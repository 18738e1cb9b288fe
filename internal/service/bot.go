package service

import (
	"sync"
	"time"
)

// BotService decides when the automated player moves. With a think delay the
// move runs on a timer goroutine; without one it runs before Schedule returns.
type BotService interface {
	Schedule(move func())
	// Wait blocks until every scheduled move has run.
	Wait()
}

type botService struct {
	thinkDelay time.Duration
	pending    sync.WaitGroup
}

func NewBotService(thinkDelay time.Duration) BotService {
	return &botService{
		thinkDelay: thinkDelay,
	}
}

func (that *botService) Schedule(move func()) {
	if that.thinkDelay <= 0 {
		move()
		return
	}

	that.pending.Add(1)
	time.AfterFunc(that.thinkDelay, func() {
		defer that.pending.Done()
		move()
	})
}

func (that *botService) Wait() {
	that.pending.Wait()
}
