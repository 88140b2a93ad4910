package prescriptions

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
)

var stopWords = map[string]struct{}{
	"tablet": {}, "capsule": {}, "syrup": {}, "injection": {}, "cream": {}, "drops": {},
	"once": {}, "daily": {}, "twice": {}, "thrice": {},
	"morning": {}, "evening": {}, "night": {},
	"before": {}, "after": {}, "meals": {}, "food": {},
	"breakfast": {}, "lunch": {}, "dinner": {},
	"week": {}, "weeks": {}, "month": {}, "months": {}, "day": {}, "days": {},
}

var (
	unitToken = regexp.MustCompile(`^\d+(?:\.\d+)?(?:mg|ml|mcg|g|iu|units?)$`)
	unitWords = map[string]struct{}{"mg": {}, "ml": {}, "mcg": {}, "g": {}, "iu": {}, "unit": {}, "units": {}}
)

// SignificantWords lowercases name and keeps the tokens worth a substring
// search: longer than two characters, not numeric, not dosage or timing
// vocabulary, and not a unit-bearing amount.
func SignificantWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if len(w) <= 2 || isNumeric(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, unit := unitWords[w]; unit || unitToken.MatchString(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

type medicineFinder interface {
	FindAvailableByExactName(ctx context.Context, name string) (*models.Medicine, error)
	FindAvailableByNameContains(ctx context.Context, term string) (*models.Medicine, error)
}

// Matcher resolves extracted candidates against stocked inventory.
type Matcher struct {
	finder medicineFinder
}

func NewMatcher(finder medicineFinder) *Matcher {
	return &Matcher{finder: finder}
}

// Match builds one PrescriptionMedicine per candidate. A candidate is
// available iff an in-stock medicine was found for it.
func (m *Matcher) Match(ctx context.Context, prescriptionID uuid.UUID, candidates []Candidate) ([]models.PrescriptionMedicine, error) {
	out := make([]models.PrescriptionMedicine, 0, len(candidates))
	for i, c := range candidates {
		matched, err := m.resolve(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		pm := models.PrescriptionMedicine{
			PrescriptionID:   prescriptionID,
			MedicineName:     c.Name,
			Dosage:           c.Dosage,
			Frequency:        c.Frequency,
			QuantityRequired: c.QuantityRequired,
			IsAvailable:      matched != nil,
			Position:         i,
		}
		if matched != nil {
			id := matched.ID
			pm.MatchedMedicineID = &id
			pm.MatchedMedicine = matched
		}
		out = append(out, pm)
	}
	return out, nil
}

// resolve tries an exact name match, then a substring search on the first
// and second significant words. First hit wins.
func (m *Matcher) resolve(ctx context.Context, name string) (*models.Medicine, error) {
	found, err := m.finder.FindAvailableByExactName(ctx, name)
	if hit, err := hitOrMiss(found, err); hit != nil || err != nil {
		return hit, err
	}
	words := SignificantWords(name)
	for i := 0; i < len(words) && i < 2; i++ {
		found, err = m.finder.FindAvailableByNameContains(ctx, words[i])
		if hit, err := hitOrMiss(found, err); hit != nil || err != nil {
			return hit, err
		}
	}
	return nil, nil
}

func hitOrMiss(found *models.Medicine, err error) (*models.Medicine, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}
