package whatif

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/metrics"
)

// Service memoises projections. Simulate is pure, so a result keyed by a
// fingerprint of its inputs can be reused until the series changes.
type Service struct {
	cache   *lru.Cache[uint64, Result]
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewService creates a service caching up to size results; size 0 disables caching.
func NewService(size int, m *metrics.Metrics, log zerolog.Logger) (*Service, error) {
	s := &Service{
		metrics: m,
		log:     log.With().Str("service", "whatif").Logger(),
	}
	if size > 0 {
		cache, err := lru.New[uint64, Result](size)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Simulate returns the projection for req, from cache when possible.
func (s *Service) Simulate(series domain.TimeSeries, perms domain.Permissions, req Request) (Result, error) {
	key := fingerprint(series, perms, req)
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.metrics.WhatIfCacheHits.Inc()
			return res, nil
		}
	}

	res, err := Simulate(series, perms, req)
	if err != nil {
		return Result{}, err
	}

	outcome := "ok"
	if res.Blocked {
		outcome = string(res.Reason)
		s.log.Debug().Str("x", string(req.X)).Str("y", string(req.Y)).Str("reason", outcome).Msg("What-If blocked")
	}
	s.metrics.WhatIfRuns.WithLabelValues(outcome).Inc()

	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, nil
}

// Purge drops every cached projection.
func (s *Service) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Len returns the number of cached projections.
func (s *Service) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

func fingerprint(series domain.TimeSeries, perms domain.Permissions, req Request) uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	writeString := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	writeBool := func(b bool) {
		if b {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}

	writeString(string(req.X))
	writeString(string(req.Y))
	writeFloat(float64(req.LagDays))
	writeFloat(req.Scenario)
	writeFloat(float64(req.BaselineDays))
	writeBool(perms.Sleep)
	writeBool(perms.Activity)
	writeBool(perms.Nutrition)
	writeBool(perms.Vitals)

	for _, d := range series.Date {
		writeString(d)
	}
	for _, key := range domain.MetricKeys {
		col := series.Column(key)
		writeFloat(float64(len(col)))
		for _, v := range col {
			writeFloat(v)
		}
	}
	return h.Sum64()
}
