package model

// AnomalyKind 行级异常类型
type AnomalyKind string

const (
	AnomalyUnscheduledTime   AnomalyKind = "unscheduled_time"
	AnomalyMeridiemCorrected AnomalyKind = "meridiem_corrected"
	AnomalyTimeUnresolved    AnomalyKind = "time_unresolved"
	AnomalyDuplicateCID      AnomalyKind = "duplicate_cid"
	AnomalyUnmappedCollege   AnomalyKind = "unmapped_college"
	AnomalyUnknownYear       AnomalyKind = "unknown_year"
	AnomalyMalformedDays     AnomalyKind = "malformed_days"
	AnomalySpecialCaseSplit  AnomalyKind = "special_case_split"
	AnomalyDroppedRow        AnomalyKind = "dropped_row"
)

// Anomaly 被降级处理的一行数据，随结果一并返回，供人工核对
type Anomaly struct {
	Row     int         `json:"row"`
	Stage   string      `json:"stage"`
	Kind    AnomalyKind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Value   string      `json:"value,omitempty"`
	Message string      `json:"message"`
}
