package entities

type Mailbox struct {
	Name    string
	Address string
}
