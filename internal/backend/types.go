package backend

import "strings"

type UploadResponse struct {
	Status           string  `json:"status"`
	ImagePath        string  `json:"image_path"`
	Filename         string  `json:"filename"`
	DetectedRoomType string  `json:"detected_room_type"`
	RoomConfidence   float64 `json:"room_confidence"`
}

// ImageFile is an image sent as a multipart part.
type ImageFile struct {
	Name string
	Data []byte
}

type GenerateRequest struct {
	Image    ImageFile
	RoomType string
	Style    string
	Budget   int64
	Provider string
	Strength float64
}

type GenerateResponse struct {
	ImageURL      string `json:"image_url"`
	ProviderUsed  string `json:"provider_used"`
	EstimatedCost int64  `json:"estimated_cost"`
	Status        string `json:"status"`
}

type Detection struct {
	Label      string    `json:"label"`
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox,omitempty"`
}

type DetectRequest struct {
	Image  ImageFile
	Budget int64
}

// Link is a shopping suggestion. Vendor directory entries use "link" and
// "domain", plan suggestions use "url"; both are accepted.
type Link struct {
	Title       string  `json:"title"`
	Link        string  `json:"link,omitempty"`
	URL         string  `json:"url,omitempty"`
	Domain      string  `json:"domain,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	ApproxPrice float64 `json:"approx_price,omitempty"`
}

func (l Link) Href() string {
	if l.URL != "" {
		return l.URL
	}
	return l.Link
}

func (l Link) Source() string {
	if l.Vendor != "" {
		return l.Vendor
	}
	return l.Domain
}

type LinkGroup struct {
	Results []Link `json:"results"`
}

type DetectResponse struct {
	Detections        []Detection          `json:"detections"`
	OnlineSuggestions map[string]LinkGroup `json:"online_suggestions"`
	RemainingBudget   int64                `json:"remaining_budget"`
}

type PlanRequest struct {
	UserRequest   string      `json:"user_request"`
	DetectedItems []Detection `json:"detected_items"`
	Budget        int64       `json:"budget"`
}

type PlanStep struct {
	Action      string `json:"action"`
	Target      string `json:"target"`
	Reason      string `json:"reason"`
	Prompt      string `json:"prompt,omitempty"`
	Suggestions []Link `json:"suggestions,omitempty"`
}

type PlanBody struct {
	Summary string     `json:"summary"`
	Steps   []PlanStep `json:"steps"`
}

type Verification struct {
	Approved *bool  `json:"approved"`
	Feedback string `json:"feedback"`
}

// Rejected reports an explicit approved=false.
func (v *Verification) Rejected() bool {
	return v != nil && v.Approved != nil && !*v.Approved
}

type PlanResponse struct {
	Plan         *PlanBody     `json:"plan"`
	Verification *Verification `json:"verification"`
}

// SegmentRequest carries either a point (X, Y) or a Box of
// [xMin, yMin, xMax, yMax].
type SegmentRequest struct {
	ImagePath string `json:"image_path"`
	X         *int   `json:"x,omitempty"`
	Y         *int   `json:"y,omitempty"`
	Box       []int  `json:"box,omitempty"`
}

func PointSegment(imagePath string, x, y int) SegmentRequest {
	return SegmentRequest{ImagePath: imagePath, X: &x, Y: &y}
}

func BoxSegment(imagePath string, xMin, yMin, xMax, yMax int) SegmentRequest {
	return SegmentRequest{ImagePath: imagePath, Box: []int{xMin, yMin, xMax, yMax}}
}

type SegmentResponse struct {
	MaskURL  string `json:"mask_url"`
	MaskPath string `json:"mask_path"`
}

type RecolorRequest struct {
	ImagePath string `json:"image_path"`
	MaskPath  string `json:"mask_path"`
	ColorHex  string `json:"color_hex"`
}

type InpaintRequest struct {
	ImagePath string `json:"image_path"`
	MaskPath  string `json:"mask_path"`
	Prompt    string `json:"prompt"`
}

type EditResponse struct {
	ImageURL string `json:"image_url"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	CUDAAvailable bool   `json:"cuda_available"`
	CUDADevice    string `json:"cuda_device"`
}

// Device names the accelerator, "cpu" when CUDA is unavailable.
func (h HealthResponse) Device() string {
	if !h.CUDAAvailable || strings.TrimSpace(h.CUDADevice) == "" || h.CUDADevice == "N/A" {
		return "cpu"
	}
	return h.CUDADevice
}

type HistoryAction struct {
	Name string `json:"name"`
}

type HistoryEntry struct {
	ID          int64           `json:"id,omitempty"`
	ProjectName string          `json:"project_name"`
	Actions     []HistoryAction `json:"actions"`
	TotalCost   int64           `json:"total_cost"`
	Timestamp   string          `json:"timestamp,omitempty"`
}

// fastAPIError is the error body FastAPI returns for HTTPException.
type fastAPIError struct {
	Detail any `json:"detail"`
}
