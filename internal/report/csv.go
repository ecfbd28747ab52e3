package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"user-insight/internal/domain"
)

// WriteCSV vuelca filas de predicción a CSV para reportes offline, una fila
// por (user_id, version) con las mismas columnas que el warehouse.
func WriteCSV(w io.Writer, rows []domain.Row) error {
	cw := csv.NewWriter(w)

	header := append([]string{"user_id", "version"}, domain.AttributeNames...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.UserID, 10),
			strconv.FormatInt(row.Version, 10),
			row.Occupation,
			row.Industry,
			row.School,
			row.PrimaryLanguage,
			row.Major,
			row.DegreeLevel,
			row.Gender,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
