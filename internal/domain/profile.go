package domain

// UserProfile es el snapshot inmutable del usuario que se analiza.
// Se consulta una sola vez por predicción.
type UserProfile struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	GivenName      string `json:"given_name"`
	FamilyName     string `json:"family_name"`
	FullName       string `json:"full_name"`
	ImageURL       string `json:"image_url"`
	OutputLanguage string `json:"output_language"`
}

// ExternalProperty agrupa los atributos auxiliares que llegan de analytics.
// Puede no existir para un usuario; en ese caso se omite del prompt.
type ExternalProperty struct {
	City        string `json:"city"`
	Region      string `json:"region"`
	CountryCode string `json:"country_code"`
	IsEducation bool   `json:"is_education"`
}

// UserRegion resuelve la región con fallback fijo: city → region →
// country_code → "unknown". Los valores "" y "undefined" cuentan como ausentes.
func (p *ExternalProperty) UserRegion() string {
	for _, v := range []string{p.City, p.Region, p.CountryCode} {
		if v != "" && v != "undefined" {
			return v
		}
	}
	return Unknown
}

// BehavioralSignals reúne las señales históricas de un usuario. Cada lista
// puede estar vacía sin que eso invalide la predicción.
type BehavioralSignals struct {
	Prompts   []string
	Filenames []string
	Summaries []string
}

// Signals es el paquete completo que arma el agregador para una predicción.
type Signals struct {
	Profile  UserProfile
	Behavior BehavioralSignals
	Property *ExternalProperty
}
