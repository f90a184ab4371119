package mcpserver

// TriageProtocol explains the intake wizard to MCP clients driving it.
const TriageProtocol = `# Vetbridge Triage Protocol

The intake wizard is a fixed sequence of steps. Each call to ` + "`triage_turn`" + `
answers the question asked by the previous turn and returns the next one.

## Steps

| step     | asks about                                   | next     |
|----------|----------------------------------------------|----------|
| welcome  | nothing yet                                  | category |
| category | which area the veteran wants help with       | symptoms |
| symptoms | what they have been experiencing             | severity |
| severity | how long, and how bad on a 1-5 scale         | context  |
| context  | preferred kind of help, and their state      | assess   |
| assess   | nothing; produces the assessment             | complete |
| complete | terminal                                     | complete |
| crisis   | terminal                                     | crisis   |

## Calling convention

1. Start with ` + "`step: welcome`" + ` and no session.
2. Send the returned ` + "`nextStep`" + ` as ` + "`step`" + ` on the following call, with the
   veteran's answer in ` + "`user_message`" + `. Quick-reply picks from
   ` + "`suggestedQuestions`" + ` may also go in ` + "`category`" + ` or ` + "`symptoms`" + `.
3. Always pass back the ` + "`session`" + ` object unchanged. It carries the answers
   captured so far; the server keeps no state between calls.
4. The turn after ` + "`context`" + ` (step ` + "`assess`" + `) returns the severity tier,
   next steps and recommendations grouped into institutional, grassroots and
   regional tracks.

## Crisis handling

- Crisis language in the latest answer or any earlier user message ends the
  wizard immediately with ` + "`nextStep: crisis`" + ` and ` + "`isCrisis: true`" + `.
- The response then carries the Veterans Crisis Line (dial 988 then press 1,
  text 838255) and emergency contacts. Relay them verbatim and prominently.
- Once a session is in crisis it stays there; start a new session only when
  the veteran asks to.
- Use ` + "`check_crisis`" + ` to screen any free text outside the wizard.

## Failure behaviour

Every turn returns a question or a result. When the language model behind
the wizard is slow or unavailable, a fixed question for the step is used
instead; no call fails because of it.
`
