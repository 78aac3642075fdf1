package storage

import "time"

const (
	ResultOK = "OK"
	ResultNG = "NG"
)

// PageSize is the fixed number of rows returned by a log listing page.
// The dashboard infers "no more pages" from a shorter result.
const PageSize = 50

// LogValues is the full mutable-field set of an extrusion run record.
// Every field is a pointer: nil means "not supplied", which makes the
// same struct usable for both create and partial-update payloads.
type LogValues struct {
	Date               *string  `json:"date,omitempty"`
	DieCode            *string  `json:"dieCode,omitempty"`
	SubNumber          *int     `json:"subNumber,omitempty"`
	BilletType         *string  `json:"billetType,omitempty"`
	BilletLength       *float64 `json:"billetLength,omitempty"`
	BilletQuantity     *int     `json:"billetQuantity,omitempty"`
	IngotRatio         *float64 `json:"ingotRatio,omitempty"`
	LotNumberCode      *string  `json:"lotNumberCode,omitempty"`
	RamSpeed           *float64 `json:"ramSpeed,omitempty"`
	DieTemp            *float64 `json:"dieTemp,omitempty"`
	BilletTemp         *float64 `json:"billetTemp,omitempty"`
	ContainerTemp      *float64 `json:"containerTemp,omitempty"`
	OutputTemp         *float64 `json:"outputTemp,omitempty"`
	Pressure           *float64 `json:"pressure,omitempty"`
	PullerMode         *string  `json:"pullerMode,omitempty"`
	PullerSpeed        *float64 `json:"pullerSpeed,omitempty"`
	PullerForce        *float64 `json:"pullerForce,omitempty"`
	ExtrusionCycle     *int     `json:"extrusionCycle,omitempty"`
	ExtrusionLength    *float64 `json:"extrusionLength,omitempty"`
	OrderLength        *float64 `json:"orderLength,omitempty"`
	Segments           *int     `json:"segments,omitempty"`
	CoolingMethod      *string  `json:"coolingMethod,omitempty"`
	CoolingMode        *string  `json:"coolingMode,omitempty"`
	StartButt          *float64 `json:"startButt,omitempty"`
	BeforeSewing       *float64 `json:"beforeSewing,omitempty"`
	AfterSewing        *float64 `json:"afterSewing,omitempty"`
	EndButt            *float64 `json:"endButt,omitempty"`
	StartTime          *string  `json:"startTime,omitempty"`
	EndTime            *string  `json:"endTime,omitempty"`
	ProductionQuantity *int     `json:"productionQuantity,omitempty"`
	Result             *string  `json:"result,omitempty"`
	Remark             *string  `json:"remark,omitempty"`
	NGQuantity         *int     `json:"ngQuantity,omitempty"`
	ButtLength         *float64 `json:"buttLength,omitempty"`
	Customer           *string  `json:"customer,omitempty"`
	Item               *string  `json:"item,omitempty"`
	Code               *string  `json:"code,omitempty"`
}

// LogField pairs a payload field id with its table column and the value
// carried by a particular LogValues (nil when not supplied).
type LogField struct {
	ID     string
	Column string
	Value  any
}

// Fields enumerates every mutable field in a fixed order. Insert, partial
// update and reference sync all walk this list so the column mapping lives
// in exactly one place.
func (v LogValues) Fields() []LogField {
	f := func(id, column string, set bool, value any) LogField {
		if !set {
			return LogField{ID: id, Column: column, Value: nil}
		}
		return LogField{ID: id, Column: column, Value: value}
	}
	return []LogField{
		f("date", "log_date", v.Date != nil, deref(v.Date)),
		f("dieCode", "die_code", v.DieCode != nil, deref(v.DieCode)),
		f("subNumber", "sub_number", v.SubNumber != nil, deref(v.SubNumber)),
		f("billetType", "billet_type", v.BilletType != nil, deref(v.BilletType)),
		f("billetLength", "billet_length", v.BilletLength != nil, deref(v.BilletLength)),
		f("billetQuantity", "billet_quantity", v.BilletQuantity != nil, deref(v.BilletQuantity)),
		f("ingotRatio", "ingot_ratio", v.IngotRatio != nil, deref(v.IngotRatio)),
		f("lotNumberCode", "lot_number_code", v.LotNumberCode != nil, deref(v.LotNumberCode)),
		f("ramSpeed", "ram_speed", v.RamSpeed != nil, deref(v.RamSpeed)),
		f("dieTemp", "die_temp", v.DieTemp != nil, deref(v.DieTemp)),
		f("billetTemp", "billet_temp", v.BilletTemp != nil, deref(v.BilletTemp)),
		f("containerTemp", "container_temp", v.ContainerTemp != nil, deref(v.ContainerTemp)),
		f("outputTemp", "output_temp", v.OutputTemp != nil, deref(v.OutputTemp)),
		f("pressure", "pressure", v.Pressure != nil, deref(v.Pressure)),
		f("pullerMode", "puller_mode", v.PullerMode != nil, deref(v.PullerMode)),
		f("pullerSpeed", "puller_speed", v.PullerSpeed != nil, deref(v.PullerSpeed)),
		f("pullerForce", "puller_force", v.PullerForce != nil, deref(v.PullerForce)),
		f("extrusionCycle", "extrusion_cycle", v.ExtrusionCycle != nil, deref(v.ExtrusionCycle)),
		f("extrusionLength", "extrusion_length", v.ExtrusionLength != nil, deref(v.ExtrusionLength)),
		f("orderLength", "order_length", v.OrderLength != nil, deref(v.OrderLength)),
		f("segments", "segments", v.Segments != nil, deref(v.Segments)),
		f("coolingMethod", "cooling_method", v.CoolingMethod != nil, deref(v.CoolingMethod)),
		f("coolingMode", "cooling_mode", v.CoolingMode != nil, deref(v.CoolingMode)),
		f("startButt", "start_butt", v.StartButt != nil, deref(v.StartButt)),
		f("beforeSewing", "before_sewing", v.BeforeSewing != nil, deref(v.BeforeSewing)),
		f("afterSewing", "after_sewing", v.AfterSewing != nil, deref(v.AfterSewing)),
		f("endButt", "end_butt", v.EndButt != nil, deref(v.EndButt)),
		f("startTime", "start_time", v.StartTime != nil, deref(v.StartTime)),
		f("endTime", "end_time", v.EndTime != nil, deref(v.EndTime)),
		f("productionQuantity", "production_quantity", v.ProductionQuantity != nil, deref(v.ProductionQuantity)),
		f("result", "result", v.Result != nil, deref(v.Result)),
		f("remark", "remark", v.Remark != nil, deref(v.Remark)),
		f("ngQuantity", "ng_quantity", v.NGQuantity != nil, deref(v.NGQuantity)),
		f("buttLength", "butt_length", v.ButtLength != nil, deref(v.ButtLength)),
		f("customer", "customer", v.Customer != nil, deref(v.Customer)),
		f("item", "item", v.Item != nil, deref(v.Item)),
		f("code", "code", v.Code != nil, deref(v.Code)),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// ExtrusionLog is one stored manufacturing run, joined with the plant and
// press line of the operator account that created it.
type ExtrusionLog struct {
	ID         int64     `json:"id"`
	CreatedBy  int64     `json:"createdBy"`
	Plant      string    `json:"plant"`
	Machine    string    `json:"machine"`
	Shift      string    `json:"shift"`
	Deleted    bool      `json:"deleted"`
	LastEdited time.Time `json:"lastEdited"`
	LogValues
}

const (
	ShiftDay   = "day"
	ShiftNight = "night"
)

// ShiftOf derives the shift from a "HH:MM" start time. Day shift runs
// 07:00 to 18:59, everything else is the night shift.
func ShiftOf(startTime string) string {
	m, err := MinutesOfDay(startTime)
	if err != nil {
		return ""
	}
	if m >= 7*60 && m < 19*60 {
		return ShiftDay
	}
	return ShiftNight
}
