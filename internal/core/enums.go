package core

type TaskStatus = string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusStopped TaskStatus = "STOPPED"
)

type ProvisionAction = string

const (
	ProvisionActionUp    ProvisionAction = "up"
	ProvisionActionDown  ProvisionAction = "down"
	ProvisionActionClean ProvisionAction = "clean"
)

type RunPhase = string

const (
	RunPhaseAcquiring RunPhase = "acquiring"
	RunPhaseWaiting   RunPhase = "waiting"
	RunPhaseResolving RunPhase = "resolving"
	RunPhaseRunning   RunPhase = "running"
	RunPhaseStopping  RunPhase = "stopping"
)
