package etl

// InputFormatProvider names an input format and supplies its configuration.
type InputFormatProvider interface {
	InputFormatName() string
	InputFormatConfiguration() map[string]string
}

// Input is what a batch source registers on its context to tell the
// framework where its data comes from.
type Input struct {
	// Name is the reference name used to tag the input for lineage.
	Name     string
	Provider InputFormatProvider
}

// InputOf creates an Input.
func InputOf(name string, provider InputFormatProvider) Input {
	return Input{
		Name:     name,
		Provider: provider,
	}
}

// inputFormatProvider is a static InputFormatProvider.
type inputFormatProvider struct {
	name string
	conf map[string]string
}

// NewInputFormatProvider returns a provider with a fixed name and
// configuration.
func NewInputFormatProvider(name string, conf map[string]string) InputFormatProvider {
	return &inputFormatProvider{name: name, conf: conf}
}

func (p *inputFormatProvider) InputFormatName() string {
	return p.name
}

func (p *inputFormatProvider) InputFormatConfiguration() map[string]string {
	return p.conf
}
