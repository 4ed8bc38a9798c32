package analysis

// Detector looks for a pattern in scan findings. It returns the findings it
// keeps, optionally annotated with a Comment and Metadata.
type Detector interface {
	Detect(findings []CallFinding) []CallFinding
}

// DetectorChain runs detectors in order, each on the previous output.
type DetectorChain struct {
	detectors []Detector
}

func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{
		detectors: detectors,
	}
}

func (dc *DetectorChain) Detect(findings []CallFinding) []CallFinding {
	result := findings
	for _, detector := range dc.detectors {
		result = detector.Detect(result)
	}
	return result
}
