package transit

type ServiceAlert struct {
	PrimaryIdentifier string `json:"id" bson:"id" groups:"basic"`

	Title    string             `json:"title" bson:"title" groups:"basic"`
	Text     string             `json:"text,omitempty" bson:"text,omitempty" groups:"detailed"`
	Effect   ServiceAlertEffect `json:"effect" bson:"effect" groups:"basic"`
	Severity string             `json:"severity" bson:"severity" groups:"basic"`

	AffectedRoutes []string `json:"affectedRoutes" bson:"affectedroutes" groups:"internal"`
}

type ServiceAlertEffect string

const (
	ServiceAlertEffectDetour          ServiceAlertEffect = "Detour"
	ServiceAlertEffectModifiedService ServiceAlertEffect = "Modified Service"
	ServiceAlertEffectNoService       ServiceAlertEffect = "No Service"
	ServiceAlertEffectReducedService  ServiceAlertEffect = "Reduced Service"
	ServiceAlertEffectSevereDelays    ServiceAlertEffect = "Severe Delays"
	ServiceAlertEffectStopMoved       ServiceAlertEffect = "Stop Moved"
	ServiceAlertEffectOther           ServiceAlertEffect = "Other"
)
