// Package domain models MGNREGA (Mahatma Gandhi National Rural Employment
// Guarantee Act) performance data per administrative district.
//
// # Data Source
//
// Monthly district figures come from the data.gov.in open-data resource API.
// The upstream schema has never been stable: key names flip between
// snake_case and PascalCase-with-underscores across releases, numeric values
// arrive as plain numbers, comma-grouped strings, "NA", or are missing
// entirely, and some monetary columns are stated in lakhs (1 lakh = 100,000
// rupees). [Normalizer] absorbs all of that behind an ordered alias table and
// a per-field unit-scale table so a new upstream naming convention is a
// configuration change, not a code change.
//
// # Financial Years
//
// The program reports against the Indian financial year, April through
// March, written "YYYY-YY" ("2024-25"). January–March of calendar year N
// belong to financial year (N-1)-N.
//
// # Counters
//
// Cumulative counters (person-days in particular) exceed 32-bit range for
// large districts and are not safe in float64 either. [Counter] keeps them
// as exact arbitrary-precision integers and serializes them as decimal
// strings.
//
// # Degradation
//
// Every read path has a fallback: fresh cache, live fetch, stale cache,
// and finally [GenerateSynthetic], which fabricates internally consistent
// figures from a deterministic seed so repeated failures for the same
// district and period show the user the same numbers. Synthetic records
// carry [OriginSynthetic] so provenance is never ambiguous.
package domain
