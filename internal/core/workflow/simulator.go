package workflow

import (
	"context"
	"sync"

	"eloan-must/internal/client"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/simulation"
)

const (
	msgDetectFailed   = "Gagal mendeteksi produk. Silakan coba lagi."
	msgAboveRange     = "Jumlah pinjaman melebihi batas simulasi"
	msgSimulateFailed = "Simulasi belum tersedia. Silakan coba lagi."
)

// SimulationGateway is the remote side of the simulation preview
type SimulationGateway interface {
	DetectPlafond(ctx context.Context, amount float64) (domain.PlafondDetection, error)
	Simulate(ctx context.Context, amount float64, tenor int) (domain.SimulationResult, error)
}

var _ SimulationGateway = (*client.Client)(nil)

// Preview is the state of the simulation panel after an input change
type Preview struct {
	Amount         float64
	RequestedTenor int

	// Tenor is what was submitted: RequestedTenor clamped to the product
	Tenor     int
	Clamped   bool
	Tenors    []int
	Detection *domain.PlafondDetection
	Result    *domain.SimulationResult
	Message   string
}

// Simulator computes previews. Figures always come from the server;
// locally it only bounds the amount and clamps the tenor.
type Simulator struct {
	gw SimulationGateway

	mu     sync.Mutex
	seq    uint64
	latest Preview
}

// NewSimulator creates a simulator over gw
func NewSimulator(gw SimulationGateway) *Simulator {
	return &Simulator{gw: gw}
}

// Preview runs detection and simulation for amount and tenor. When
// previews overlap, the most recently started one wins and older ones
// return ErrStale.
func (s *Simulator) Preview(ctx context.Context, amount float64, tenor int) (Preview, error) {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.mu.Unlock()

	p := s.build(ctx, amount, tenor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if mine != s.seq {
		return Preview{}, ErrStale
	}
	s.latest = p
	return p, nil
}

// Latest returns the last accepted preview
func (s *Simulator) Latest() Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Simulator) build(ctx context.Context, amount float64, tenor int) Preview {
	p := Preview{Amount: amount, RequestedTenor: tenor, Tenor: tenor}

	if amount < simulation.MinAmount {
		// below the minimum the panel is cleared
		return p
	}
	if amount > simulation.MaxAmount {
		p.Detection = &domain.PlafondDetection{Found: false, Message: msgAboveRange}
		p.Message = msgAboveRange
		return p
	}

	det, err := s.gw.DetectPlafond(ctx, amount)
	if err != nil {
		p.Detection = &domain.PlafondDetection{Found: false, Message: msgDetectFailed}
		p.Message = msgDetectFailed
		return p
	}
	p.Detection = &det
	p.Message = det.Message
	if !det.Found {
		return p
	}

	p.Tenor, p.Clamped = simulation.ClampTenor(tenor, det.MaxTenorMonth)
	p.Tenors = simulation.AvailableTenors(det.MaxTenorMonth)
	if p.Tenor <= 0 {
		return p
	}

	result, err := s.gw.Simulate(ctx, amount, p.Tenor)
	if err != nil {
		p.Message = msgSimulateFailed
		return p
	}
	p.Result = &result
	return p
}
