package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unknown es el valor centinela para atributos sin candidato utilizable.
const Unknown = "unknown"

// Candidate es una hipótesis puntuada para un atributo. Evidence se conserva
// para auditoría pero no participa de la selección.
type Candidate struct {
	Value      *string `json:"value"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// CandidateSet es la colección ordenada de candidatos de un atributo.
type CandidateSet struct {
	Candidates []Candidate `json:"candidates"`
}

// Pick colapsa el set a un único valor: descarta candidatos con confianza
// estrictamente menor al umbral y se queda con el máximo restante. Empates
// los gana el primero visto (comparación estricta contra el máximo corriente).
// Sin sobrevivientes, o con ganador sin valor, devuelve "unknown".
// Es una función pura: mismo input, mismo output.
func (s CandidateSet) Pick(threshold float64) string {
	best := -1.0
	result := Unknown
	for _, c := range s.Candidates {
		if c.Confidence < threshold {
			continue
		}
		if c.Confidence <= best {
			continue
		}
		best = c.Confidence
		if c.Value == nil || *c.Value == "" {
			result = Unknown
		} else {
			result = *c.Value
		}
	}
	return strings.ToLower(result)
}

// Nombres de los siete atributos rastreados, en el orden de la fila persistida.
var AttributeNames = []string{
	"occupation",
	"industry",
	"school",
	"primary_language",
	"major",
	"degree_level",
	"gender",
}

// Prediction es el resultado de un ciclo de predicción para un usuario:
// un CandidateSet por atributo rastreado. No se muta después del ciclo.
type Prediction struct {
	UserID          int64
	Occupation      CandidateSet
	Industry        CandidateSet
	School          CandidateSet
	PrimaryLanguage CandidateSet
	Major           CandidateSet
	DegreeLevel     CandidateSet
	Gender          CandidateSet
}

// ParsePrediction construye una Prediction validando la respuesta JSON del
// LLM. Claves ausentes degradan a sets vacíos; un cuerpo que no sea un objeto
// JSON es un error. La confianza se recorta a [0,1].
func ParsePrediction(userID int64, raw string) (*Prediction, error) {
	var payload struct {
		Occupation      CandidateSet `json:"occupation"`
		Industry        CandidateSet `json:"industry"`
		School          CandidateSet `json:"school"`
		PrimaryLanguage CandidateSet `json:"primary_language"`
		Major           CandidateSet `json:"major"`
		DegreeLevel     CandidateSet `json:"degree_level"`
		Gender          CandidateSet `json:"gender"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse prediction: %w", err)
	}

	p := &Prediction{
		UserID:          userID,
		Occupation:      clampSet(payload.Occupation),
		Industry:        clampSet(payload.Industry),
		School:          clampSet(payload.School),
		PrimaryLanguage: clampSet(payload.PrimaryLanguage),
		Major:           clampSet(payload.Major),
		DegreeLevel:     clampSet(payload.DegreeLevel),
		Gender:          clampSet(payload.Gender),
	}
	return p, nil
}

func clampSet(s CandidateSet) CandidateSet {
	for i, c := range s.Candidates {
		if c.Confidence < 0 {
			s.Candidates[i].Confidence = 0
		}
		if c.Confidence > 1 {
			s.Candidates[i].Confidence = 1
		}
	}
	return s
}

// Row es la fila durable de una predicción, clave (UserID, Version).
type Row struct {
	UserID          int64
	Version         int64
	Occupation      string
	Industry        string
	School          string
	PrimaryLanguage string
	Major           string
	DegreeLevel     string
	Gender          string
}

// RowData resuelve cada atributo con el umbral dado. La versión la asigna
// quien persiste.
func (p *Prediction) RowData(threshold float64) Row {
	return Row{
		UserID:          p.UserID,
		Occupation:      p.Occupation.Pick(threshold),
		Industry:        p.Industry.Pick(threshold),
		School:          p.School.Pick(threshold),
		PrimaryLanguage: p.PrimaryLanguage.Pick(threshold),
		Major:           p.Major.Pick(threshold),
		DegreeLevel:     p.DegreeLevel.Pick(threshold),
		Gender:          p.Gender.Pick(threshold),
	}
}

// Properties arma el mapping que se sincroniza a analytics: sin user_id,
// en minúsculas y con los remapeos literales del idioma primario.
func (p *Prediction) Properties(threshold float64) map[string]string {
	row := p.RowData(threshold)
	values := map[string]string{
		"occupation":       row.Occupation,
		"industry":         row.Industry,
		"school":           row.School,
		"primary_language": row.PrimaryLanguage,
		"major":            row.Major,
		"degree_level":     row.DegreeLevel,
		"gender":           row.Gender,
	}

	props := make(map[string]string, len(values))
	for key, value := range values {
		value = strings.ToLower(value)
		if key == "primary_language" {
			switch value {
			case "zh-cn":
				value = "simplified chinese"
			case "zh-tw":
				value = "traditional chinese"
			}
		}
		props["predict_"+key] = value
	}
	return props
}
