package entities

// EventEmailData feeds the HTML notification template.
type EventEmailData struct {
	UserName           string
	EventTitle         string
	EventCode          string
	Address            string
	StartTimeFormatted string
	EndTimeFormatted   string
	CurrentYear        int
	Language           string
	Status             string
}
