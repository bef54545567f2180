package models

// Clause is an entry of the ISO 50001 clause reference
type Clause struct {
	Number string `json:"number"`
	Title  string `json:"title"`
}

var isoClauses = []Clause{
	{"4", "Context of the organization"},
	{"4.1", "Understanding the organization and its context"},
	{"4.2", "Understanding the needs and expectations of interested parties"},
	{"4.3", "Determining the scope of the energy management system"},
	{"4.4", "Energy management system"},
	{"5", "Leadership"},
	{"5.1", "Leadership and commitment"},
	{"5.2", "Energy policy"},
	{"5.3", "Organization roles, responsibilities and authorities"},
	{"6", "Planning"},
	{"6.1", "Actions to address risks and opportunities"},
	{"6.2", "Objectives, energy targets and planning to achieve them"},
	{"6.3", "Energy review"},
	{"6.4", "Energy performance indicators"},
	{"6.5", "Energy baseline"},
	{"6.6", "Planning for collection of energy data"},
	{"7", "Support"},
	{"7.1", "Resources"},
	{"7.2", "Competence"},
	{"7.3", "Awareness"},
	{"7.4", "Communication"},
	{"7.5", "Documented information"},
	{"8", "Operation"},
	{"8.1", "Operational planning and control"},
	{"8.2", "Design"},
	{"8.3", "Procurement"},
	{"9", "Performance evaluation"},
	{"9.1", "Monitoring, measurement, analysis and evaluation of energy performance and the EnMS"},
	{"9.2", "Internal audit"},
	{"9.3", "Management review"},
	{"10", "Improvement"},
	{"10.1", "Nonconformity and corrective action"},
	{"10.2", "Continual improvement"},
}

var clauseIndex = func() map[string]string {
	m := make(map[string]string, len(isoClauses))
	for _, c := range isoClauses {
		m[c.Number] = c.Title
	}
	return m
}()

// Clauses returns a copy of the clause reference in document order
func Clauses() []Clause {
	out := make([]Clause, len(isoClauses))
	copy(out, isoClauses)
	return out
}

// ClauseTitle looks up the title of a clause number
func ClauseTitle(number string) (string, bool) {
	t, ok := clauseIndex[number]
	return t, ok
}
