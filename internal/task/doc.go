// Package task owns the task file: parsing, validation, queries and mutations.
//
// The task file (.taskflow.json) holds every task of one working directory:
//
//	{
//	  "tasks": [
//	    {
//	      "id": 1,
//	      "title": "Write the README",
//	      "priority": "high",
//	      "status": "todo",
//	      "tags": ["docs"],
//	      "due_date": "2025-03-01",
//	      "created": "2025-02-20T09:30:00Z",
//	      "updated": "2025-02-20T09:30:00Z"
//	    }
//	  ],
//	  "last_updated": "2025-02-20T09:30:00Z"
//	}
//
// # Loading
//
// Open is best-effort. A missing file is an empty store; an unreadable or
// malformed file is logged as a warning and also yields an empty store.
// Timestamps written without an offset are read in local time.
// Schema violations found on load are logged and the tasks are kept.
//
// # Saving
//
// Every mutation rewrites the whole file with:
//   - 2-space indentation
//   - Trailing newline
//   - Non-ASCII text written verbatim
//
// The file is written to a temporary sibling and renamed into place. When the
// write fails the in-memory change stands and a *PersistError is returned.
//
// # Ids
//
// A new task gets the highest existing id plus one, so ids freed by deletion
// are reused only once no higher id remains.
//
// # Due dates
//
// Due dates are stored exactly as entered. CheckDue classifies them as none,
// pending, overdue or invalid; a done task is never overdue.
package task
