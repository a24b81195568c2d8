package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type HintState struct {
	HintNumber int     `json:"hintNumber"`
	IsUnlocked bool    `json:"isUnlocked"`
	Content    *string `json:"content"`
}

type SolutionContent struct {
	Code        map[string]string `json:"code"`
	Explanation string            `json:"explanation"`
}

type SolutionState struct {
	IsUnlocked bool             `json:"isUnlocked"`
	CanUnlock  bool             `json:"canUnlock"`
	Content    *SolutionContent `json:"content"`
}

// DisclosureState is the caller's view of a problem's hints and solution.
// Locked content is never included.
type DisclosureState struct {
	ProblemID  uuid.UUID     `json:"problemId"`
	TotalHints int           `json:"totalHints"`
	NextHint   int           `json:"nextHint"`
	Hints      []HintState   `json:"hints"`
	Solution   SolutionState `json:"solution"`
}

type HintUnlock struct {
	HintNumber int    `json:"hintNumber"`
	Content    string `json:"content"`
}

type DisclosureService interface {
	GetDisclosureState(ctx context.Context, problemID uuid.UUID) (*DisclosureState, error)
	UnlockHint(ctx context.Context, problemID uuid.UUID, hintNumber int) (*HintUnlock, error)
	UnlockSolution(ctx context.Context, problemID uuid.UUID) (*SolutionContent, error)
}

type disclosureService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheets    repos.SheetRepo
	problems  repos.ProblemRepo
	hints     repos.ProblemHintRepo
	progress  repos.ProgressRecordRepo
	aggregate domainagg.DisclosureAggregate
	counters  *observability.Metrics
}

func NewDisclosureService(db *gorm.DB, log *logger.Logger, sheets repos.SheetRepo, problems repos.ProblemRepo, hints repos.ProblemHintRepo, progress repos.ProgressRecordRepo, aggregate domainagg.DisclosureAggregate, counters *observability.Metrics) DisclosureService {
	return &disclosureService{
		db:        db,
		log:       log.With("service", "DisclosureService"),
		sheets:    sheets,
		problems:  problems,
		hints:     hints,
		progress:  progress,
		aggregate: aggregate,
		counters:  counters,
	}
}

// GetDisclosureState reads without creating a progress record; a missing record
// means nothing is unlocked.
func (s *disclosureService) GetDisclosureState(ctx context.Context, problemID uuid.UUID) (*DisclosureState, error) {
	const op = "Disclosure.GetDisclosureState"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	problem, err := loadVisibleProblem(dbc, s.sheets, s.problems, op, problemID)
	if err != nil {
		return nil, err
	}
	hints, err := s.hints.ListByProblem(dbc, problem.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	rec, err := s.progress.GetByUserProblem(dbc, userID, problem.ID)
	if err != nil {
		return nil, storeError(op, err)
	}

	var unlocked []int
	solutionUnlocked := false
	if rec != nil {
		unlocked = rec.HintSet()
		solutionUnlocked = rec.SolutionUnlocked
	}
	isUnlocked := make(map[int]bool, len(unlocked))
	for _, n := range unlocked {
		isUnlocked[n] = true
	}

	out := &DisclosureState{
		ProblemID:  problem.ID,
		TotalHints: len(hints),
		Hints:      make([]HintState, 0, len(hints)),
	}
	for _, h := range hints {
		st := HintState{HintNumber: h.HintNumber, IsUnlocked: isUnlocked[h.HintNumber]}
		if st.IsUnlocked {
			content := h.Content
			st.Content = &content
		}
		out.Hints = append(out.Hints, st)
	}
	if prefix := domainprogress.UnlockedPrefix(unlocked); prefix < len(hints) {
		out.NextHint = prefix + 1
	}
	out.Solution = SolutionState{
		IsUnlocked: solutionUnlocked,
		CanUnlock:  domainprogress.CanUnlockSolution(unlocked, len(hints)),
	}
	if solutionUnlocked {
		out.Solution.Content = &SolutionContent{
			Code:        problem.SolutionCodeMap(),
			Explanation: problem.SolutionExplanation,
		}
	}
	return out, nil
}

func unlockOutcome(err error, already bool) string {
	switch {
	case err != nil:
		if code := domainagg.CodeOf(err); code != "" {
			return string(code)
		}
		return "error"
	case already:
		return "already_unlocked"
	default:
		return "success"
	}
}

func (s *disclosureService) UnlockHint(ctx context.Context, problemID uuid.UUID, hintNumber int) (*HintUnlock, error) {
	const op = "Disclosure.UnlockHint"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleProblem(dbctx.Context{Ctx: ctx}, s.sheets, s.problems, op, problemID); err != nil {
		return nil, err
	}
	res, err := s.aggregate.UnlockHint(ctx, domainagg.UnlockHintInput{
		UserID:     userID,
		ProblemID:  problemID,
		HintNumber: hintNumber,
	})
	s.counters.IncUnlock("hint", unlockOutcome(err, res.AlreadyApplied))
	if err != nil {
		return nil, err
	}
	if !res.AlreadyApplied {
		s.log.Info("Hint unlocked", "problem_id", problemID, "user_id", userID, "hint_number", res.HintNumber)
	}
	return &HintUnlock{HintNumber: res.HintNumber, Content: res.Content}, nil
}

func (s *disclosureService) UnlockSolution(ctx context.Context, problemID uuid.UUID) (*SolutionContent, error) {
	const op = "Disclosure.UnlockSolution"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleProblem(dbctx.Context{Ctx: ctx}, s.sheets, s.problems, op, problemID); err != nil {
		return nil, err
	}
	res, err := s.aggregate.UnlockSolution(ctx, domainagg.UnlockSolutionInput{
		UserID:    userID,
		ProblemID: problemID,
	})
	s.counters.IncUnlock("solution", unlockOutcome(err, res.AlreadyApplied))
	if err != nil {
		return nil, err
	}
	if !res.AlreadyApplied {
		s.log.Info("Solution unlocked", "problem_id", problemID, "user_id", userID)
	}
	code := res.Code
	if code == nil {
		code = map[string]string{}
	}
	return &SolutionContent{Code: code, Explanation: res.Explanation}, nil
}
