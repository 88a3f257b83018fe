package dto

import "github.com/vnFuhung2903/vcs-search-toolkit/entities"

type EmailRequest struct {
	Sender    entities.Mailbox
	Recipient entities.Mailbox
	Subject   string
	TextFile  string
	HTMLFile  string
}
