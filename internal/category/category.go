// Package category holds the semantic categories recognized by Snowflake
// classification.
package category

import "slices"

var registry = []string{
	"ADMINISTRATIVE_AREA_1",
	"ADMINISTRATIVE_AREA_2",
	"AGE",
	"BANK_ACCOUNT",
	"CITY",
	"COUNTRY",
	"DATE_OF_BIRTH",
	"DRIVERS_LICENSE",
	"EMAIL",
	"ETHNICITY",
	"GENDER",
	"IMEI",
	"IP_ADDRESS",
	"LATITUDE",
	"LAT_LONG",
	"LONGITUDE",
	"MARITAL_STATUS",
	"MEDICARE_NUMBER",
	"NAME",
	"NATIONAL_IDENTIFIER",
	"OCCUPATION",
	"ORGANIZATION_IDENTIFIER",
	"PASSPORT",
	"PAYMENT_CARD",
	"PHONE_NUMBER",
	"POSTAL_CODE",
	"SALARY",
	"STREET_ADDRESS",
	"TAX_IDENTIFIER",
	"URL",
	"VIN",
	"YEAR_OF_BIRTH",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(registry))
	for _, c := range registry {
		m[c] = struct{}{}
	}
	return m
}()

// All returns the categories in display order.
func All() []string {
	return slices.Clone(registry)
}

// IsKnown reports whether label is a registered category.
func IsKnown(label string) bool {
	_, ok := known[label]
	return ok
}
