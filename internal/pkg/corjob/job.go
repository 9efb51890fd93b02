package corjob

import (
	log "github.com/sirupsen/logrus"
)

// Job carries the string configuration that a run hands to its input format.
type Job struct {
	conf map[string]string
}

// NewJob creates a Job with an empty configuration.
func NewJob() *Job {
	log.Info("Job new instance")
	return &Job{
		conf: make(map[string]string),
	}
}

// Get returns a configuration value, or "" if it is unset.
func (j *Job) Get(key string) string {
	return j.conf[key]
}

// Set assigns a configuration value.
func (j *Job) Set(key, value string) {
	j.conf[key] = value
}

// Configuration returns a copy of the job's configuration.
func (j *Job) Configuration() map[string]string {
	conf := make(map[string]string, len(j.conf))
	for k, v := range j.conf {
		conf[k] = v
	}
	return conf
}
