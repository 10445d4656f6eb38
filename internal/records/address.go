package records

import "fmt"

// EnrichAddress appends the city/state suffix: "<address>, <city>, <state>".
// It does not check whether the suffix is already present.
func EnrichAddress(address, city, state string) string {
	return fmt.Sprintf("%s, %s, %s", address, city, state)
}

// AddCityAndState returns the enriched address of every record, in order.
func AddCityAndState(recs []Record, field, city, state string) ([]string, error) {
	out := make([]string, 0, len(recs))
	for i, r := range recs {
		addr, ok := r.Get(field)
		if !ok {
			return nil, fmt.Errorf("record %d: no %q field", i, field)
		}
		out = append(out, EnrichAddress(addr, city, state))
	}
	return out, nil
}

// MapAddressesToRecords maps each enriched address back to its record.
// When two records share an address the later one wins.
func MapAddressesToRecords(recs []Record, field, city, state string) (map[string]Record, error) {
	addrs, err := AddCityAndState(recs, field, city, state)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(recs))
	for i, a := range addrs {
		out[a] = recs[i]
	}
	return out, nil
}
