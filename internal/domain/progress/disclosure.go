package progress

import (
	"errors"
	"fmt"
)

var ErrHintOutOfRange = errors.New("hint number out of range")

// SequenceViolation reports an out-of-order hint request.
type SequenceViolation struct {
	Requested int
	Required  int
	Next      int
}

func (e *SequenceViolation) Error() string {
	return fmt.Sprintf("unlock hint %d before hint %d", e.Required, e.Requested)
}

// PrerequisiteNotMet reports a solution request before every hint is unlocked.
type PrerequisiteNotMet struct {
	Remaining int
}

func (e *PrerequisiteNotMet) Error() string {
	if e.Remaining == 1 {
		return "unlock the remaining hint before viewing the solution"
	}
	return fmt.Sprintf("unlock the remaining %d hints before viewing the solution", e.Remaining)
}

// UnlockedPrefix returns k for the longest run 1..k contained in unlocked.
func UnlockedPrefix(unlocked []int) int {
	set := toSet(unlocked)
	k := 0
	for {
		if _, ok := set[k+1]; !ok {
			return k
		}
		k++
	}
}

// CheckHint decides whether hint n of total may be unlocked.
// already is true when n is unlocked and the call is a no-op.
func CheckHint(unlocked []int, n, total int) (already bool, err error) {
	if n < 1 || n > total {
		return false, ErrHintOutOfRange
	}
	set := toSet(unlocked)
	if _, ok := set[n]; ok {
		return true, nil
	}
	if n == 1 {
		return false, nil
	}
	if _, ok := set[n-1]; ok {
		return false, nil
	}
	return false, &SequenceViolation{Requested: n, Required: n - 1, Next: UnlockedPrefix(unlocked) + 1}
}

// RemainingHints counts hints in 1..total not yet unlocked.
func RemainingHints(unlocked []int, total int) int {
	if total <= 0 {
		return 0
	}
	set := toSet(unlocked)
	remaining := 0
	for i := 1; i <= total; i++ {
		if _, ok := set[i]; !ok {
			remaining++
		}
	}
	return remaining
}

func CanUnlockSolution(unlocked []int, total int) bool {
	return RemainingHints(unlocked, total) == 0
}

// CheckSolution returns *PrerequisiteNotMet unless all hints are unlocked.
func CheckSolution(unlocked []int, total int) error {
	if remaining := RemainingHints(unlocked, total); remaining > 0 {
		return &PrerequisiteNotMet{Remaining: remaining}
	}
	return nil
}

// AddHint returns unlocked with n added, sorted and deduplicated.
func AddHint(unlocked []int, n int) []int {
	out := make([]int, 0, len(unlocked)+1)
	out = append(out, unlocked...)
	out = append(out, n)
	return normalize(out)
}

func toSet(in []int) map[int]struct{} {
	set := make(map[int]struct{}, len(in))
	for _, n := range in {
		set[n] = struct{}{}
	}
	return set
}
