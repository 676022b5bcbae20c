package normalize

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CityInfo is the static metadata known for a city.
type CityInfo struct {
	Country  string `yaml:"country" json:"country"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// CityTable is a case-insensitive city lookup table.
type CityTable struct {
	byName map[string]CityInfo
}

var defaultCities = map[string]CityInfo{
	"istanbul":         {"Turkey", "Europe/Istanbul"},
	"ankara":           {"Turkey", "Europe/Istanbul"},
	"izmir":            {"Turkey", "Europe/Istanbul"},
	"bursa":            {"Turkey", "Europe/Istanbul"},
	"london":           {"United Kingdom", "Europe/London"},
	"manchester":       {"United Kingdom", "Europe/London"},
	"birmingham":       {"United Kingdom", "Europe/London"},
	"paris":            {"France", "Europe/Paris"},
	"lyon":             {"France", "Europe/Paris"},
	"berlin":           {"Germany", "Europe/Berlin"},
	"munich":           {"Germany", "Europe/Berlin"},
	"hamburg":          {"Germany", "Europe/Berlin"},
	"stuttgart":        {"Germany", "Europe/Berlin"},
	"amsterdam":        {"Netherlands", "Europe/Amsterdam"},
	"rotterdam":        {"Netherlands", "Europe/Amsterdam"},
	"madrid":           {"Spain", "Europe/Madrid"},
	"barcelona":        {"Spain", "Europe/Madrid"},
	"milan":            {"Italy", "Europe/Rome"},
	"rome":             {"Italy", "Europe/Rome"},
	"warsaw":           {"Poland", "Europe/Warsaw"},
	"prague":           {"Czech Republic", "Europe/Prague"},
	"vienna":           {"Austria", "Europe/Vienna"},
	"zurich":           {"Switzerland", "Europe/Zurich"},
	"stockholm":        {"Sweden", "Europe/Stockholm"},
	"dublin":           {"Ireland", "Europe/Dublin"},
	"lisbon":           {"Portugal", "Europe/Lisbon"},
	"porto":            {"Portugal", "Europe/Lisbon"},
	"new york":         {"United States", "America/New_York"},
	"boston":           {"United States", "America/New_York"},
	"atlanta":          {"United States", "America/New_York"},
	"detroit":          {"United States", "America/Detroit"},
	"chicago":          {"United States", "America/Chicago"},
	"houston":          {"United States", "America/Chicago"},
	"dallas":           {"United States", "America/Chicago"},
	"austin":           {"United States", "America/Chicago"},
	"denver":           {"United States", "America/Denver"},
	"phoenix":          {"United States", "America/Phoenix"},
	"los angeles":      {"United States", "America/Los_Angeles"},
	"san francisco":    {"United States", "America/Los_Angeles"},
	"seattle":          {"United States", "America/Los_Angeles"},
	"toronto":          {"Canada", "America/Toronto"},
	"montreal":         {"Canada", "America/Toronto"},
	"vancouver":        {"Canada", "America/Vancouver"},
	"mexico city":      {"Mexico", "America/Mexico_City"},
	"monterrey":        {"Mexico", "America/Monterrey"},
	"sao paulo":        {"Brazil", "America/Sao_Paulo"},
	"buenos aires":     {"Argentina", "America/Argentina/Buenos_Aires"},
	"shanghai":         {"China", "Asia/Shanghai"},
	"shenzhen":         {"China", "Asia/Shanghai"},
	"beijing":          {"China", "Asia/Shanghai"},
	"guangzhou":        {"China", "Asia/Shanghai"},
	"tokyo":            {"Japan", "Asia/Tokyo"},
	"osaka":            {"Japan", "Asia/Tokyo"},
	"seoul":            {"South Korea", "Asia/Seoul"},
	"mumbai":           {"India", "Asia/Kolkata"},
	"delhi":            {"India", "Asia/Kolkata"},
	"bangalore":        {"India", "Asia/Kolkata"},
	"chennai":          {"India", "Asia/Kolkata"},
	"singapore":        {"Singapore", "Asia/Singapore"},
	"bangkok":          {"Thailand", "Asia/Bangkok"},
	"ho chi minh city": {"Vietnam", "Asia/Ho_Chi_Minh"},
	"hanoi":            {"Vietnam", "Asia/Ho_Chi_Minh"},
	"jakarta":          {"Indonesia", "Asia/Jakarta"},
	"manila":           {"Philippines", "Asia/Manila"},
	"dhaka":            {"Bangladesh", "Asia/Dhaka"},
	"karachi":          {"Pakistan", "Asia/Karachi"},
	"dubai":            {"United Arab Emirates", "Asia/Dubai"},
	"cairo":            {"Egypt", "Africa/Cairo"},
	"lagos":            {"Nigeria", "Africa/Lagos"},
	"johannesburg":     {"South Africa", "Africa/Johannesburg"},
	"sydney":           {"Australia", "Australia/Sydney"},
	"melbourne":        {"Australia", "Australia/Melbourne"},
}

// DefaultCityTable returns the built-in city table.
func DefaultCityTable() *CityTable {
	t := &CityTable{byName: make(map[string]CityInfo, len(defaultCities))}
	for k, v := range defaultCities {
		t.byName[k] = v
	}
	return t
}

// LoadCityTable reads a YAML map of city name to CityInfo and layers it over
// the built-in table. Entries in the file win over built-in entries.
func LoadCityTable(path string) (*CityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read city table %s", path)
	}
	var extra map[string]CityInfo
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrap(err, "normalize: parse city table")
	}
	t := DefaultCityTable()
	for name, info := range extra {
		t.byName[NormalizeText(name)] = info
	}
	return t, nil
}

// Lookup returns the metadata for name, case-insensitively. Unknown cities
// return false; callers must not guess.
func (t *CityTable) Lookup(name string) (CityInfo, bool) {
	if t == nil {
		return CityInfo{}, false
	}
	info, ok := t.byName[NormalizeText(name)]
	return info, ok
}

// Len returns the number of known cities.
func (t *CityTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

var builtinCities = DefaultCityTable()

// LookupCity looks name up in the built-in table.
func LookupCity(name string) (CityInfo, bool) {
	return builtinCities.Lookup(strings.TrimSpace(name))
}
