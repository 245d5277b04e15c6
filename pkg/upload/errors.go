package upload

// Stage names one step of the upload sequence. Failures carry their stage so
// callers can map each abort point to a distinct outcome (exit code, metric,
// retry decision).
type Stage string

const (
	StageSpace    Stage = "space"
	StageInstance Stage = "instance"
	StageContent  Stage = "content"
)

// StageError tags a failure with the sequence stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (self *StageError) Error() string {
	return string(self.Stage) + " stage failed: " + self.Err.Error()
}

func (self *StageError) Cause() error {
	return self.Err
}

// StageOf walks err's cause chain and returns the stage of the first
// StageError found, or "" when the failure is not stage-tagged.
func StageOf(err error) Stage {
	for err != nil {
		if stageErr, ok := err.(*StageError); ok {
			return stageErr.Stage
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = causer.Cause()
	}
	return ""
}

// LocalFileError marks a failure to read the local file, as opposed to a
// remote failure. The distinction matters for diagnostics: a missing local
// file means no upload was ever attempted.
type LocalFileError struct {
	Path string
	Err  error
}

func (self *LocalFileError) Error() string {
	return "local file " + self.Path + ": " + self.Err.Error()
}

func (self *LocalFileError) Cause() error {
	return self.Err
}

// IsLocalFileError reports whether err (or anything in its cause chain) is a
// local-file failure.
func IsLocalFileError(err error) bool {
	for err != nil {
		if _, ok := err.(*LocalFileError); ok {
			return true
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = causer.Cause()
	}
	return false
}
