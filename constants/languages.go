package constants

// Language pairs a human-readable name with the tesseract language
// code (possibly a + joined combination).
type Language struct {
	Name string
	Code string
}

// Languages is the extraction catalog; every strategy runs once per
// entry. Order is significant: candidate output preserves it.
var Languages = []Language{
	{Name: "german", Code: "deu"},
	{Name: "english", Code: "eng"},
	{Name: "spanish", Code: "spa"},
	{Name: "french", Code: "fra"},
	{Name: "italian", Code: "ita"},
	{Name: "portuguese", Code: "por"},
	{Name: "dutch", Code: "nld"},
	{Name: "auto", Code: "deu+eng+spa+fra"},
	{Name: "multi_european", Code: "deu+eng+spa+fra+ita+por+nld"},
}

// LanguageCode resolves a catalog name to its tesseract code; unknown
// names fall back to english.
func LanguageCode(name string) string {
	for _, l := range Languages {
		if l.Name == name {
			return l.Code
		}
	}
	return "eng"
}
