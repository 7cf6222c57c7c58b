package embeddedfiles

import _ "embed"

//go:embed examples.txt
var UsageExamples string
