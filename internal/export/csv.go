package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
)

// WriteCSV writes the dataset to w with the fixed header row.
func WriteCSV(w io.Writer, dataset *domain.WeeklyDataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(dataset) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the dataset to a file at path.
func WriteCSVFile(path string, dataset *domain.WeeklyDataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, dataset); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
