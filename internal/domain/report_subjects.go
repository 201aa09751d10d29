package domain

// Subject is a node of a report subject tree.
type Subject struct {
	ID       int
	Subject  string
	Children []Subject
}

var listingSubjects = []Subject{
	{ID: 10, Subject: "I think it's a scam"},
	{ID: 20, Subject: "It's a duplicate listing"},
	{ID: 30, Subject: "It's in the wrong category"},
	{ID: 40, Subject: "It shouldn't be on the marketplace", Children: []Subject{
		{ID: 41, Subject: "Drugs, alcohol or tobacco"},
		{ID: 42, Subject: "Other"},
		{ID: 43, Subject: "Sexual content"},
		{ID: 44, Subject: "Weapons or violent content"},
	}},
}

var userSubjects = []Subject{
	{ID: 10, Subject: "Behaving suspiciously", Children: []Subject{
		{ID: 11, Subject: "Not responding to messages"},
		{ID: 12, Subject: "Offering to pay with Western Union or Paypal"},
		{ID: 13, Subject: "Offering to trade instead of paying in cash"},
		{ID: 14, Subject: "Spam account"},
	}},
	{ID: 20, Subject: "Inappropriate chat messages", Children: []Subject{
		{ID: 21, Subject: "Other"},
		{ID: 22, Subject: "Rude or offensive language"},
		{ID: 23, Subject: "Sexual or obscene language"},
		{ID: 24, Subject: "Suspicious or scammy behavior"},
		{ID: 25, Subject: "Threatening violence"},
	}},
	{ID: 30, Subject: "Inappropriate profile photo or bio", Children: []Subject{
		{ID: 31, Subject: "Bio"},
		{ID: 32, Subject: "Profile photo"},
	}},
	{ID: 40, Subject: "Problem during our meetup", Children: []Subject{
		{ID: 41, Subject: "Didn't show up"},
		{ID: 42, Subject: "Item defective or not as described"},
		{ID: 43, Subject: "Other"},
		{ID: 44, Subject: "Paid with counterfeit money"},
		{ID: 45, Subject: "Robbery or violent incident"},
	}},
	{ID: 50, Subject: "Selling something inappropriate"},
	{ID: 60, Subject: "Unrealistic price or offers"},
}

// ListingSubjects returns a copy of the listing report subject tree.
func ListingSubjects() []Subject { return cloneSubjects(listingSubjects) }

// UserSubjects returns a copy of the user report subject tree.
func UserSubjects() []Subject { return cloneSubjects(userSubjects) }

// SubjectsFor returns the subject tree for a report target.
func SubjectsFor(t ReportTarget) []Subject {
	if t == ReportTargetListing {
		return listingSubjects
	}
	return userSubjects
}

// FindSubject searches the tree depth-first for id.
func FindSubject(subjects []Subject, id int) (string, bool) {
	for _, node := range subjects {
		if node.ID == id {
			return node.Subject, true
		}
		if s, ok := FindSubject(node.Children, id); ok {
			return s, true
		}
	}
	return "", false
}

func cloneSubjects(in []Subject) []Subject {
	out := make([]Subject, len(in))
	for i, s := range in {
		out[i] = Subject{ID: s.ID, Subject: s.Subject}
		if len(s.Children) > 0 {
			out[i].Children = cloneSubjects(s.Children)
		}
	}
	return out
}
