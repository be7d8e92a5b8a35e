package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// maxQuantity keeps quantities inside the Postgres integer column.
const maxQuantity = math.MaxInt32

// Number is a form value that may arrive as a JSON number or as a string.
// It is kept verbatim and coerced during validation.
type Number string

// UnmarshalJSON accepts 4, 4.5, "4", "4.5" and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*n = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Number(str)
	default:
		*n = Number(s)
	}
	return nil
}

// RawTie is the unvalidated add/edit form.
type RawTie struct {
	Name            string `json:"name"`
	Quantity        Number `json:"quantity"`
	UnitPrice       Number `json:"unitPrice"`
	ValueInQuantity Number `json:"valueInQuantity"`
	Category        string `json:"category"`
	ImageURL        string `json:"imageUrl"`
}

// RawPatch is a partial edit; nil fields were not submitted.
type RawPatch struct {
	Name            *string `json:"name"`
	Quantity        *Number `json:"quantity"`
	UnitPrice       *Number `json:"unitPrice"`
	ValueInQuantity *Number `json:"valueInQuantity"`
	Category        *string `json:"category"`
	ImageURL        *string `json:"imageUrl"`
}

// Empty reports whether no field was submitted.
func (p RawPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.UnitPrice == nil &&
		p.ValueInQuantity == nil && p.Category == nil && p.ImageURL == nil
}

// Overlay copies the submitted fields of p over r.
func (p RawPatch) Overlay(r RawTie) RawTie {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		r.UnitPrice = *p.UnitPrice
	}
	if p.ValueInQuantity != nil {
		r.ValueInQuantity = *p.ValueInQuantity
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	return r
}

// RawFromTie renders a stored tie back into form input, so a partial edit
// can be merged over it and revalidated as a whole.
func RawFromTie(t domain.Tie) RawTie {
	return RawTie{
		Name:            t.Name,
		Quantity:        Number(strconv.Itoa(t.Quantity)),
		UnitPrice:       Number(strconv.FormatFloat(t.UnitPrice, 'f', -1, 64)),
		ValueInQuantity: Number(strconv.FormatFloat(t.ValueInQuantity, 'f', -1, 64)),
		Category:        t.Category,
		ImageURL:        t.ImageURL,
	}
}

// tieFields holds the coerced values the struct rules run against.
type tieFields struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
	UnitPrice       float64 `json:"unitPrice" validate:"gte=0"`
	ValueInQuantity float64 `json:"valueInQuantity" validate:"gte=0"`
}

// ValidateTie coerces and checks a submitted form.
// On failure the error is a domain.ValidationErrors with one entry per
// violated field. The returned tie has no ID; callers keep the one they have.
func ValidateTie(raw RawTie) (domain.Tie, error) {
	var (
		errs    domain.ValidationErrors
		coerced = map[string]bool{}
		f       = tieFields{Name: strings.TrimSpace(raw.Name)}
	)

	if q, msg := parseInt(raw.Quantity); msg != "" {
		errs = append(errs, domain.FieldError{Field: "quantity", Message: msg})
		coerced["quantity"] = true
	} else {
		f.Quantity = q
	}
	if p, msg := parseFloat(raw.UnitPrice); msg != "" {
		errs = append(errs, domain.FieldError{Field: "unitPrice", Message: msg})
		coerced["unitPrice"] = true
	} else {
		f.UnitPrice = p
	}
	if v, msg := parseFloat(raw.ValueInQuantity); msg != "" {
		errs = append(errs, domain.FieldError{Field: "valueInQuantity", Message: msg})
		coerced["valueInQuantity"] = true
	} else {
		f.ValueInQuantity = v
	}

	errs = append(errs, structErrors(f, coerced)...)

	category := domain.NormalizeCategory(raw.Category)
	if category != domain.Uncategorized {
		if _, err := ValidateCategoryName(category); err != nil {
			for _, fe := range domain.FieldErrors(err) {
				errs = append(errs, domain.FieldError{Field: "category", Message: fe.Message})
			}
		}
	}

	if len(errs) > 0 {
		return domain.Tie{}, errs
	}

	imageURL := strings.TrimSpace(raw.ImageURL)
	if imageURL == "" {
		imageURL = domain.PlaceholderImageURL
	}
	return domain.Tie{
		Name:            f.Name,
		Quantity:        f.Quantity,
		UnitPrice:       f.UnitPrice,
		ValueInQuantity: f.ValueInQuantity,
		Category:        category,
		ImageURL:        imageURL,
	}, nil
}

// parseFloat coerces a numeric-like string. Empty input is 0.
func parseFloat(n Number) (float64, string) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "must be a number"
	}
	return v, ""
}

// parseInt coerces a numeric-like string that must hold a whole number.
// "4" and "4.0" are accepted; "4.5" is not.
func parseInt(n Number) (int, string) {
	v, msg := parseFloat(n)
	if msg != "" {
		return 0, msg
	}
	if v != math.Trunc(v) {
		return 0, "must be a whole number"
	}
	if v > maxQuantity {
		return 0, "must be less than or equal to " + strconv.Itoa(maxQuantity)
	}
	if v < -maxQuantity {
		// Still negative, so gte=0 reports it; clamp to keep the int in range.
		return -1, ""
	}
	return int(v), ""
}
