package section

// PlaceholderRoleHeading is the heading of the job role seeded into empty
// documents.
const PlaceholderRoleHeading = "Job Title, Company | Start Date – End Date"

// PlaceholderRole returns a fresh placeholder job role under the experience
// anchor.
func PlaceholderRole() Section {
	return Section{
		ID:       NewID(TypeJobRole),
		Type:     TypeJobRole,
		Title:    "Job Title",
		Content:  "<h3>" + PlaceholderRoleHeading + "</h3><ul><li>Describe an accomplishment</li></ul>",
		ParentID: ExperienceID,
	}
}

// DefaultHeader returns an empty header section.
func DefaultHeader() Section {
	return Section{ID: HeaderID, Type: TypeHeader, Title: "Header", Content: "<h1>Your Name</h1>"}
}

// DefaultSummary returns an empty reserved summary section.
func DefaultSummary() Section {
	return Section{ID: SummaryID, Type: TypeSummary, Title: "Professional Summary"}
}

// DefaultSections is the minimal document body that follows a header: an empty
// summary, the experience anchor and one placeholder role.
func DefaultSections() []Section {
	exp, _ := NewAnchor(ExperienceID)
	return []Section{DefaultSummary(), exp, PlaceholderRole()}
}

// DefaultDocument is the document substituted when parsing recovers nothing.
func DefaultDocument() *Document {
	return NewDocument(append([]Section{DefaultHeader()}, DefaultSections()...))
}
