package provider

// DefaultName is the variant used when the configured name is unknown.
const DefaultName = OpenAIName

// Registry maps provider names to variants.
type Registry struct {
	variants map[string]Variant
	order    []string
}

// NewRegistry creates a Registry holding the given variants.
func NewRegistry(variants ...Variant) *Registry {
	r := &Registry{variants: make(map[string]Variant, len(variants))}
	for _, v := range variants {
		r.Register(v)
	}
	return r
}

// Builtin returns a Registry with every bundled variant. overrides is keyed by provider name.
func Builtin(overrides map[string]Settings) *Registry {
	return NewRegistry(
		NewOpenAI(overrides[OpenAIName]),
		NewGroq(overrides[GroqName]),
		NewXAI(overrides[XAIName]),
		NewGemini(overrides[GeminiName]),
		NewAnthropic(overrides[AnthropicName]),
	)
}

// Register adds v, replacing any variant with the same name.
func (r *Registry) Register(v Variant) {
	if _, exists := r.variants[v.Name()]; !exists {
		r.order = append(r.order, v.Name())
	}
	r.variants[v.Name()] = v
}

// Resolve returns the variant registered under name. Unknown names resolve
// to the default variant, or to the first registered one when the default is
// absent, and report false. Names match case-sensitively. An empty registry
// resolves to nil.
func (r *Registry) Resolve(name string) (Variant, bool) {
	if v, ok := r.variants[name]; ok {
		return v, true
	}
	if v, ok := r.variants[DefaultName]; ok {
		return v, false
	}
	if len(r.order) > 0 {
		return r.variants[r.order[0]], false
	}
	return nil, false
}

// Variants returns the registered variants in registration order.
func (r *Registry) Variants() []Variant {
	out := make([]Variant, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.variants[name])
	}
	return out
}
