package provider

// functionSchema is the tool surface advertised to the assistant. The names
// and required fields must stay in lockstep with the interpreter's
// operations.
const functionSchema = `[
  {
    "name": "addEvent",
    "description": "Add a new event to the timeline",
    "parameters": {
      "type": "object",
      "properties": {
        "title": {"type": "string", "description": "Title of the event"},
        "time": {"type": "string", "description": "Time of event in HH:MM format"},
        "duration": {"type": "number", "description": "Duration in minutes"}
      },
      "required": ["title", "time", "duration"]
    }
  },
  {
    "name": "editEvent",
    "description": "Edit an existing event",
    "parameters": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "description": "ID of event to edit"},
        "title": {"type": "string", "description": "New title of the event"},
        "time": {"type": "string", "description": "New time in HH:MM format"},
        "duration": {"type": "number", "description": "New duration in minutes"}
      },
      "required": ["id"]
    }
  },
  {
    "name": "deleteEvent",
    "description": "Delete an event from the timeline",
    "parameters": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "description": "ID of event to delete"}
      },
      "required": ["id"]
    }
  },
  {
    "name": "getEvents",
    "description": "List the current schedule",
    "parameters": {"type": "object", "properties": {}}
  }
]`
