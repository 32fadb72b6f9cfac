package config

type WorkerKeyStruct struct {
	GenerationJobsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	GenerationJobsQueue: "generation_jobs_queue",
}
