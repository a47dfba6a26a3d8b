package lightbox

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Model is the inheritable data record behind a theme. Models form a
// singly-linked chain through Parent; lookups walk the chain from the model
// itself towards the root.
type Model struct {
	ID          string
	Name        string
	Parent      *Model
	Layout      string
	Fields      map[string]any
	Transitions map[string]TransitionFunc
	Measures    map[string]MeasureFunc

	mu sync.RWMutex
}

// Get returns attribute attr. Layout, name and transitions are fields of
// their own; anything else lives in Fields.
func (m *Model) Get(attr string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch attr {
	case "id":
		return m.ID, true
	case "name":
		return m.Name, true
	case "layout":
		return m.Layout, true
	case "transition", "transitions":
		return m.Transitions, m.Transitions != nil
	case "measures":
		return m.Measures, m.Measures != nil
	}
	v, ok := m.Fields[attr]
	return v, ok
}

// Has reports whether attr is present and non-empty.
func (m *Model) Has(attr string) bool {
	v, ok := m.Get(attr)
	return ok && !isEmpty(v)
}

// Set stores a field value.
func (m *Model) Set(attr string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fields == nil {
		m.Fields = make(map[string]any)
	}
	m.Fields[attr] = v
}

// initField adds attr with a nil value unless it is already present.
func (m *Model) initField(attr string) {
	if _, ok := m.Get(attr); ok {
		return
	}
	m.Set(attr, nil)
}

// Ancestors returns the chain starting at m, current model first. A parent
// loop ends the chain at the first repeated model.
func (m *Model) Ancestors() []*Model {
	var chain []*Model
	seen := make(map[*Model]bool)
	for cur := m; cur != nil && !seen[cur]; cur = cur.Parent {
		seen[cur] = true
		chain = append(chain, cur)
	}
	return chain
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case map[string]TransitionFunc:
		return len(t) == 0
	case map[string]MeasureFunc:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case bool:
		return !t
	}
	return false
}

// modelSpec is the YAML form of a model.
type modelSpec struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Parent string         `yaml:"parent"`
	Layout string         `yaml:"layout"`
	Fields map[string]any `yaml:"fields"`
	Offset *Dimensions    `yaml:"offset"`
	Margin *Dimensions    `yaml:"margin"`
}

// LoadModels reads a YAML list of models and links parents by id. Parents
// may be declared after their children. Transitions are code and are
// attached by the caller.
//
//	# models.yaml
//	- id: base
//	  layout: "<div>{{item.content}}</div>"
//	- id: dark
//	  parent: base
//	  margin: {width: 20, height: 20}
func LoadModels(r io.Reader) ([]*Model, error) {
	var specs []modelSpec
	if err := yaml.NewDecoder(r).Decode(&specs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode models: %w", err)
	}

	byID := make(map[string]*Model, len(specs))
	models := make([]*Model, 0, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("decode models: model without id")
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: model %q", ErrDuplicate, s.ID)
		}
		m := &Model{ID: s.ID, Name: s.Name, Layout: s.Layout, Fields: s.Fields}
		if s.Offset != nil {
			m.Measures = withMeasure(m.Measures, "offset", *s.Offset)
		}
		if s.Margin != nil {
			m.Measures = withMeasure(m.Measures, "margin", *s.Margin)
		}
		byID[s.ID] = m
		models = append(models, m)
	}
	for i, s := range specs {
		if s.Parent == "" {
			continue
		}
		parent, ok := byID[s.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q (model %q)", ErrUnknownParent, s.Parent, s.ID)
		}
		models[i].Parent = parent
	}
	return models, nil
}

func withMeasure(m map[string]MeasureFunc, attr string, d Dimensions) map[string]MeasureFunc {
	if m == nil {
		m = make(map[string]MeasureFunc)
	}
	m[attr] = func(*Theme) Dimensions { return d }
	return m
}

const defaultLayout = `<div class="lb_container">` +
	`<div class="lb_content">{{item.content}}` +
	`<div class="lb_nav">{{ui.nav_prev}}{{ui.nav_next}}</div>` +
	`<div class="lb_controls">{{ui.close}}{{ui.slideshow_control}}</div>` +
	`</div>` +
	`<div class="lb_details">` +
	`<div class="lb_title">{{item.title}}</div>` +
	`<div class="lb_caption">{{item.caption}}</div>` +
	`<div class="lb_description">{{item.description}}</div>` +
	`<div class="lb_status">{{ui.group_status}}</div>` +
	`</div></div>`

// DefaultModel returns the model registered by View.Init when no other
// model has been added.
func DefaultModel() *Model {
	return &Model{
		ID:     "default",
		Name:   "Default",
		Layout: defaultLayout,
		Measures: map[string]MeasureFunc{
			"offset": func(*Theme) Dimensions { return Dimensions{Width: 32, Height: 55} },
		},
	}
}
