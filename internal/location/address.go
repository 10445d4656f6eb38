package location

import (
	"errors"
	"fmt"
	"strings"

	"mycity/internal/mycity"
	"mycity/internal/records"
)

var ErrNoAddress = errors.New("location: no current address in session")

// BuildOriginAddress turns the caller's stored address into a query origin:
// periods are dropped and "<city> <state>" is appended.
func BuildOriginAddress(req *mycity.Request, city, state string) (string, error) {
	addr, ok := req.CurrentAddress()
	if !ok || strings.TrimSpace(addr) == "" {
		return "", ErrNoAddress
	}
	addr = strings.Join(strings.Fields(strings.ReplaceAll(addr, ".", "")), " ")
	return fmt.Sprintf("%s %s %s", addr, city, state), nil
}

// DestAddressesFromFeatures enriches the address at index of every feature.
func DestAddressesFromFeatures(index int, features [][]string, city, state string) ([]string, error) {
	out := make([]string, 0, len(features))
	for i, f := range features {
		if index < 0 || index >= len(f) {
			return nil, fmt.Errorf("feature %d has no field at index %d", i, index)
		}
		out = append(out, records.EnrichAddress(f[index], city, state))
	}
	return out, nil
}
