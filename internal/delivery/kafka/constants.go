package kafka

const (
	TopicTicketIssued    = "ticket.issued"
	TopicTicketCheckedIn = "ticket.checkedin"

	TopicRegistrationImported = "registration.imported"
)
