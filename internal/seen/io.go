package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/jobwatch/internal/models"
)

// ReadListings reads a JSON array of listings from path.
func ReadListings(path string) ([]models.Listing, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Listing{}, nil
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if listings == nil {
		return []models.Listing{}, nil
	}
	return listings, nil
}

// ReadListingsAllowMissing treats a missing file as empty history.
func ReadListingsAllowMissing(path string) ([]models.Listing, error) {
	listings, err := ReadListings(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Listing{}, nil
		}
		return nil, err
	}
	return listings, nil
}

// WriteListings writes listings as pretty JSON.
func WriteListings(path string, listings []models.Listing) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
