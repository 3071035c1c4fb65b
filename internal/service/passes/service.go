package passes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"HomeDesk/entity"
	repository "HomeDesk/internal/database"
	"HomeDesk/internal/lib/sl"
)

// Check-in rejection kinds. None of them mutates pass state.
var (
	ErrPassNotFound = errors.New("pass not found")
	ErrPassNotYet   = errors.New("pass not valid yet")
	ErrPassExpired  = errors.New("pass expired")
	ErrPassUsed     = errors.New("pass already used")
	ErrPassInactive = errors.New("pass not active")
)

// Repository is the persistence needed by the pass service.
type Repository interface {
	InsertPass(ctx context.Context, pass *entity.VisitorPass) error
	FindPassByCode(ctx context.Context, code string) (*entity.VisitorPass, error)
	ConsumePass(ctx context.Context, code string, singleUse bool, now time.Time) (*entity.VisitorPass, error)
}

// IssueRequest carries the fields a completed visitor-pass wizard
// collected.
type IssueRequest struct {
	ResidentId  string
	VisitorName string
	Phone       string
	VisitorType string
	Purpose     string
	DateSel     string
	StartSel    string
	DurationSel string
}

// Service implements pass issuance and the single-use check-in
// protocol.
type Service struct {
	repo Repository
	loc  *time.Location
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		loc:  loc,
		log:  log.With(sl.Module("pass-service")),
		now:  time.Now,
	}
}

// Issue computes the validity window, derives the single-use flag,
// generates a code and persists the pass. Code collisions are retried
// with a fresh code.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*entity.VisitorPass, error) {
	now := s.now()

	validFrom, validUntil, err := ComputeWindow(req.DateSel, req.StartSel, req.DurationSel, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("computing validity window: %w", err)
	}

	pass := entity.NewVisitorPass(req.ResidentId, req.VisitorName, req.VisitorType)
	pass.Phone = req.Phone
	pass.Purpose = req.Purpose
	pass.ValidFrom = validFrom
	pass.ValidUntil = validUntil
	pass.SingleUse = SingleUse(req.VisitorType, req.DurationSel)

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		pass.PassCode = GenerateCode()
		err = s.repo.InsertPass(ctx, pass)
		if err == nil {
			s.log.Info("pass issued",
				slog.String("pass_code", pass.PassCode),
				slog.String("visitor_type", pass.VisitorType),
				slog.Bool("single_use", pass.SingleUse),
			)
			return pass, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, fmt.Errorf("storing pass: %w", err)
		}
	}
	return nil, fmt.Errorf("storing pass: %w", err)
}

// CheckIn validates a typed code and consumes the pass. All rejection
// paths leave the pass untouched; the consumption itself is one
// conditional update in the repository, so concurrent duplicate
// check-ins of a single-use code can never both succeed.
func (s *Service) CheckIn(ctx context.Context, rawCode string) (*entity.VisitorPass, error) {
	code := entity.NormalizeCode(rawCode)
	now := s.now()

	pass, err := s.repo.FindPassByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPassNotFound
		}
		return nil, fmt.Errorf("looking up pass: %w", err)
	}

	switch pass.Status {
	case entity.PassActive:
	case entity.PassUsed:
		return nil, ErrPassUsed
	default:
		return nil, ErrPassInactive
	}
	if now.Before(pass.ValidFrom) {
		return nil, ErrPassNotYet
	}
	if now.After(pass.ValidUntil) {
		return nil, ErrPassExpired
	}
	if pass.SingleUse && pass.UsedCount >= 1 {
		return nil, ErrPassUsed
	}

	consumed, err := s.repo.ConsumePass(ctx, code, pass.SingleUse, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotConsumable) {
			// Lost a race against a concurrent check-in.
			return nil, ErrPassUsed
		}
		return nil, fmt.Errorf("consuming pass: %w", err)
	}

	s.log.Info("pass checked in",
		slog.String("pass_code", code),
		slog.Int("used_count", consumed.UsedCount),
	)
	return consumed, nil
}

// Lookup returns a pass with its status resolved against the clock.
func (s *Service) Lookup(ctx context.Context, rawCode string) (*entity.VisitorPass, error) {
	code := entity.NormalizeCode(rawCode)

	pass, err := s.repo.FindPassByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}
	pass.Status = pass.EffectiveStatus(s.now())
	return pass, nil
}

// codeAlphabet omits letters and digits that read ambiguously when
// typed from a phone screen (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateCode produces a human-typable pass code: the two-letter
// prefix followed by six characters.
func GenerateCode() string {
	id := uuid.New()
	code := make([]byte, 6)
	for i := range code {
		code[i] = codeAlphabet[int(id[i])%len(codeAlphabet)]
	}
	return entity.PassCodePrefix + string(code)
}
