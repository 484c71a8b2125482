package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper deletes snapshots last written before cutoff. Stores that expire
// keys on their own (redis) have no sweeper.
type Sweeper interface {
	Sweep(cutoff time.Time) (int64, error)
}

type RetentionService struct {
	Sweeper  Sweeper
	Carts    *CartService
	TTL      time.Duration
	Interval time.Duration
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

func (s *RetentionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RetentionService) log() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}

// SweepOnce runs one retention pass and returns the number of snapshots
// and in-memory stores dropped.
func (s *RetentionService) SweepOnce() (snapshots int64, stores int) {
	if s.Sweeper != nil && s.TTL > 0 {
		n, err := s.Sweeper.Sweep(s.now().Add(-s.TTL))
		if err != nil {
			s.log().WithError(err).Warn("cart.retention.sweep")
		}
		snapshots = n
	}
	if s.Carts != nil {
		stores = s.Carts.EvictIdle()
	}
	if snapshots > 0 || stores > 0 {
		s.log().WithFields(logrus.Fields{"snapshots": snapshots, "stores": stores}).Info("cart.retention")
	}
	return snapshots, stores
}

// Run sweeps every Interval until ctx is done.
func (s *RetentionService) Run(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepOnce()
		}
	}
}
