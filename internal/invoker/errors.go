package invoker

import (
	"fmt"

	"shaderweaver/internal/shader"
)

// CompilationFailedError reports that the compiler exited non-zero for a
// target. It is the only way a run fails once the compiler is reachable.
type CompilationFailedError struct {
	Target   shader.Stage
	ExitCode int
}

func (e *CompilationFailedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("error compiling %s shader (exit code %d)", e.Target, e.ExitCode)
}
