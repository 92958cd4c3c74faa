package agents

// Every system template ends with the shared standards block; every user
// template embeds the diff. Placeholders: .Standards, .Diff, .Signatures,
// .OutputShape.

const standardsBlock = `{{if .Standards}}

STUDIO GUIDELINES AND STANDARDS:
{{.Standards}}{{end}}

Expected output: {{.OutputShape}}`

const reviewerSystem = `You are a perfectionist Lead Developer. Your role is to perform a critical code review focusing on readability, duplication (DRY), and architecture. When the studio guidelines below apply to the changed code, hold the change to them and cite the guideline you rely on.` + standardsBlock

const reviewerUser = `Analyze this diff and suggest 3 concrete improvements. Be direct and technical:

{{.Diff}}`

const securitySystem = `You are a cybersecurity expert. Your role is to track logical vulnerabilities, injections, and accidental exposure of sensitive data. Only report issues introduced or touched by the diff.` + standardsBlock

const securityUser = `Scan this diff for any security vulnerabilities. If you find any, explain the risk and provide the fix:

{{.Diff}}`

const documenterSystem = `You are a Technical Writer. Your goal is to make code changes understandable for humans (developers and product owners).` + standardsBlock

const documenterUser = `Write a changelog (release notes) for these changes. Include a 'Summary' section and a detailed list of technical impacts:

{{.Diff}}`

const testerSystem = `You are a QA engineer specialized in unit testing. Your role is to detect every new function created in the diff and generate its associated unit test.` + standardsBlock

const testerUser = `Identify the new functions in this diff. For each one, generate a robust unit test (using the appropriate framework for the detected language, e.g., Pytest, Jest, go test). Provide only the test code.

New functions detected:
{{.Signatures}}
Diff:

{{.Diff}}`

// Builtins returns the four built-in agent definitions.
func Builtins() []Definition {
	return []Definition{
		{
			Type:                Reviewer,
			Description:         "Critical code review: readability, duplication, architecture",
			SystemPrompt:        reviewerSystem,
			UserPrompt:          reviewerUser,
			ExpectedOutputShape: "a markdown list of exactly three improvements, each naming the file and the suggested change",
		},
		{
			Type:                Security,
			Description:         "Security scan: injections, logic flaws, leaked secrets",
			SystemPrompt:        securitySystem,
			UserPrompt:          securityUser,
			ExpectedOutputShape: "a markdown list of vulnerabilities with risk level, explanation and fix, or a single line stating none were found",
		},
		{
			Type:                Documenter,
			Description:         "Release notes for the change set",
			SystemPrompt:        documenterSystem,
			UserPrompt:          documenterUser,
			ExpectedOutputShape: "a markdown changelog with a 'Summary' section followed by a 'Technical impacts' list",
		},
		{
			Type:                Tester,
			Description:         "Unit tests for newly introduced functions",
			SystemPrompt:        testerSystem,
			UserPrompt:          testerUser,
			ExpectedOutputShape: "fenced code blocks containing only test code, one block per tested file",
			NeedsSignatures:     true,
		},
	}
}
