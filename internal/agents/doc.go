// Package agents defines the analysis agents as data.
//
// An agent is a [Definition]: system and user prompt templates plus a
// description of the expected output. The four built-ins (reviewer, security,
// documenter, tester) differ only in their text; adding an agent means
// calling [Registry.Register], not adding control flow.
package agents
