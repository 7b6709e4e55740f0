package dialogue

// Commands recognised while idle, compared case-insensitively
const (
	CommandAdd = "add"
	CommandGet = "get"
)

// Responses written back to the user
const (
	PromptID     = "enter id: "
	PromptDate   = "enter date: "
	PromptAmount = "enter amount: "

	ResponseOK             = "OK\n"
	ResponseUnknownCommand = "unknown command\n"

	MessageDuplicateID = "transaction with this id already exists"
	MessageNotFound    = "no transaction found with this id"
)

func errorResponse(message, prompt string) string {
	return "Error: " + message + "\n" + prompt
}
