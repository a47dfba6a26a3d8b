package lightbox

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Options configures a View.
//
//	prefix: slb
//	key: change-me
//	viewport: {width: 1280, height: 800}
//	options:
//	  loop: false
//	  slideshow_duration: 4
type Options struct {
	// Prefix namespaces data attributes (data-<prefix>-*) and CSS classes.
	Prefix string `yaml:"prefix" validate:"required,alphanum"`
	// Key signs history tokens. Without a key, history entries carry no URL.
	Key string `yaml:"key" validate:"omitempty,min=8"`
	// Sealed encrypts history tokens instead of only signing them.
	Sealed bool `yaml:"sealed"`
	// Values seed component attributes for every component kind.
	Values map[string]any `yaml:"options"`
	// Viewport is the initial viewport size.
	Viewport Dimensions `yaml:"viewport"`
}

// DefaultOptions returns the options a View uses when none are loaded.
func DefaultOptions() Options {
	return Options{
		Prefix:   "slb",
		Viewport: Dimensions{Width: 1280, Height: 800},
	}
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks the options.
func (o Options) Validate() error {
	err := validatorInstance().Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid options: %s", strings.Join(msgs, "; "))
}

// LoadOptions reads YAML options over the defaults and validates them.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
