// Package cli provides the BioGuard admin command-line client.
//
// Each invocation runs one subcommand against the REST API:
//
//	login [email]                         authenticate and save the session
//	logout                                forget the saved session
//	me                                    show the logged-in profile
//	users list [search]                   list users (admin)
//	users add <email> <name> [role]       create a user, password is prompted (admin)
//	users delete <id>                     delete a user (admin)
//	people list [search]                  list registered people
//	people add <name> <list> <photo>      register a person from a photo file
//	people delete <id>                    delete a person and their photo
//	people photo <id> <out-file>          download a person's photo
//	recognize <photo>                     match a capture and log the decision
//	logs [personId] [limit]               list access logs, newest first (admin)
//
// Without a subcommand an interactive prompt accepts the same commands.
package cli
