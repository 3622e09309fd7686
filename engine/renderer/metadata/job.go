package metadata

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in log lines. */
	Name string
	/** @brief Invoked on a worker when the job starts. Required. */
	Run func() error
	/** @brief Invoked when Run succeeds. Optional. */
	OnComplete func()
	/** @brief Invoked with the error Run returned. Optional. */
	OnFailure func(err error)
	/** @brief Invoked after OnComplete or OnFailure. Optional. */
	OnCompletionCallback func()
}
