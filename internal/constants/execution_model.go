package constants

type ExecutionModel string

const (
	ModelForm      ExecutionModel = "form"
	ModelSOP       ExecutionModel = "sop"
	ModelKnowledge ExecutionModel = "knowledge"
	ModelWorkflow  ExecutionModel = "workflow"
	ModelTraining  ExecutionModel = "training"
)

func (m ExecutionModel) Valid() bool {
	switch m {
	case ModelForm, ModelSOP, ModelKnowledge, ModelWorkflow, ModelTraining:
		return true
	}
	return false
}
