package service

import (
	"fmt"
	"strings"

	"user-insight/internal/domain"
)

// PromptBuilder arma el contexto textual que consume la frontera de
// inferencia. Es determinista: mismo input, mismo texto byte a byte.
type PromptBuilder struct{}

// BuildUserPrompt concatena secciones etiquetadas en orden fijo: perfil base,
// propiedad externa si existe, descripción del avatar si no está vacía,
// prompts históricos deduplicados preservando la primera aparición, nombres
// de archivo y resúmenes recuperados, y la instrucción de cierre.
func (PromptBuilder) BuildUserPrompt(
	profile domain.UserProfile,
	property *domain.ExternalProperty,
	signals domain.BehavioralSignals,
	imageDescription string,
) string {
	var sb strings.Builder

	sb.WriteString("## Input:\n")
	sb.WriteString(">User Base Profile:\n")
	sb.WriteString(fmt.Sprintf("- Email: %s\n", profile.Email))
	sb.WriteString(fmt.Sprintf("- GivenName: %s\n", profile.GivenName))
	sb.WriteString(fmt.Sprintf("- FamilyName: %s\n", profile.FamilyName))
	sb.WriteString(fmt.Sprintf("- FullName: %s\n", profile.FullName))
	sb.WriteString(fmt.Sprintf("- SettingOutputLanguage: %s\n", profile.OutputLanguage))

	if property != nil {
		sb.WriteString(fmt.Sprintf("- In Education or not: %t\n", property.IsEducation))
		sb.WriteString(fmt.Sprintf("- Region: %s\n", property.UserRegion()))
	}
	if imageDescription != "" {
		sb.WriteString(fmt.Sprintf("- Profile Image Description: %s\n", imageDescription))
	}

	if len(signals.Prompts) > 0 {
		sb.WriteString(">The prompt that the user had input, detect the primary_language by following prompts:\n")
		seen := make(map[string]bool, len(signals.Prompts))
		for _, prompt := range signals.Prompts {
			if seen[prompt] {
				continue
			}
			seen[prompt] = true
			sb.WriteString(fmt.Sprintf("- %s\n", prompt))
		}
	}

	if len(signals.Filenames) > 0 {
		sb.WriteString(">The FileName that the user uploaded:\n")
		for _, name := range signals.Filenames {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
	}

	if len(signals.Summaries) > 0 {
		sb.WriteString(">The FileSummary that the user uploaded:\n")
		for _, summary := range signals.Summaries {
			sb.WriteString(fmt.Sprintf("- %s\n", summary))
		}
	}

	sb.WriteString("\nPlease reason carefully and return only the final JSON result, with no explanation or formatting outside the JSON.\nNow, output the persona JSON:\n")
	return sb.String()
}
