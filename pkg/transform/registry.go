package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpfielding/ppm.go/pkg/ppm"
)

var ErrUnknown = errors.New("transform: unknown transform")

// Transform is a selectable operation on an image.
type Transform interface {
	// Name returns the identifier used on the command line (e.g., "sepia")
	Name() string
	// Option returns the menu number of the transform
	Option() int
	Description() string
	// Apply runs the transform and returns the image that is current
	// afterwards: img itself for in-place transforms, a new image for
	// those that change the geometry.
	Apply(img *ppm.Image) *ppm.Image
}

// inPlace adapts a mutating function to Transform
type inPlace struct {
	name   string
	option int
	desc   string
	fn     func(*ppm.Image)
}

func (t *inPlace) Name() string        { return t.name }
func (t *inPlace) Option() int         { return t.option }
func (t *inPlace) Description() string { return t.desc }

func (t *inPlace) Apply(img *ppm.Image) *ppm.Image {
	t.fn(img)
	return img
}

// reshape adapts a function that allocates a new image to Transform
type reshape struct {
	name   string
	option int
	desc   string
	fn     func(*ppm.Image) *ppm.Image
}

func (t *reshape) Name() string        { return t.name }
func (t *reshape) Option() int         { return t.option }
func (t *reshape) Description() string { return t.desc }

func (t *reshape) Apply(img *ppm.Image) *ppm.Image {
	return t.fn(img)
}

// all is ordered by menu option
var all = []Transform{
	&inPlace{"grayscale", 1, "Grayscale (luma)", Grayscale},
	&inPlace{"negative", 2, "Negative", Negative},
	&inPlace{"xray", 3, "X-ray", XRay},
	&inPlace{"sepia", 4, "Sepia", Sepia},
	&reshape{"rotate90", 5, "Rotate 90 degrees clockwise", Rotate90},
	&inPlace{"rotate180", 6, "Rotate 180 degrees", Rotate180},
	&reshape{"rotate270", 7, "Rotate 90 degrees counter-clockwise", Rotate270},
}

var byName = map[string]Transform{
	"gray":   all[0],
	"x-ray":  all[2],
	"rot90":  all[4],
	"rot180": all[5],
	"rot270": all[6],
}

func init() {
	for _, t := range all {
		byName[t.Name()] = t
	}
}

// All returns every transform ordered by menu option.
func All() []Transform {
	out := make([]Transform, len(all))
	copy(out, all)
	return out
}

// ByName returns a transform by name or alias, or nil if not found
func ByName(name string) Transform {
	return byName[strings.ToLower(name)]
}

// ByOption returns a transform by menu number, or nil if not found
func ByOption(option int) Transform {
	for _, t := range all {
		if t.Option() == option {
			return t
		}
	}
	return nil
}

// Lookup resolves a name, alias or menu number.
func Lookup(selector string) (Transform, error) {
	s := strings.TrimSpace(selector)
	if n, err := strconv.Atoi(s); err == nil {
		if t := ByOption(n); t != nil {
			return t, nil
		}
		return nil, fmt.Errorf("%w: option %d", ErrUnknown, n)
	}
	if t := ByName(s); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, selector)
}
