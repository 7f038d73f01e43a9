package shared

import "time"

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_clock.go -package mocks fedi_engine/shared IClock

type IClock interface {
	Now() time.Time
}

type clock struct{}

func NewClock() IClock {
	return &clock{}
}

func (c *clock) Now() time.Time {
	return time.Now()
}
