package model

// AppState is the root of the replicated tree. It is created once from a full
// state fetch and afterwards only changes through store.Apply / store.Replace.
type AppState struct {
	Documents           []Document         `json:"documents"`
	CurrentDocumentPath *string            `json:"currentDocumentPath"`
	RecentDocumentPaths []RecentDocument   `json:"recentDocumentPaths"`
	ClipboardManifest   *ClipboardManifest `json:"clipboardManifest"`
	IsReleaseBuild      bool               `json:"isReleaseBuild"`
	Error               *UserFacingError   `json:"error"`
}

// NewAppState returns the empty tree used before the first synchronization.
func NewAppState() *AppState {
	return &AppState{
		Documents:           []Document{},
		RecentDocumentPaths: []RecentDocument{},
	}
}

type RecentDocument struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// UserFacingError is set by the engine when a user-visible operation fails
// (save, export, open). It stays until acknowledge_error clears it.
type UserFacingError struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

type Document struct {
	Path              string  `json:"path"`
	Name              string  `json:"name"`
	HasUnsavedChanges bool    `json:"hasUnsavedChanges"`
	UndoEffect        *string `json:"undoEffect"`
	RedoEffect        *string `json:"redoEffect"`
	WasCloseRequested bool    `json:"wasCloseRequested"`
	Sheet             Sheet   `json:"sheet"`

	FramesListMode          ListMode   `json:"framesListMode"`
	FramesFilter            string     `json:"framesFilter"`
	AnimationsFilter        string     `json:"animationsFilter"`
	LastInteractedAnimation *string    `json:"lastInteractedAnimation"`
	LastInteractedFrame     *string    `json:"lastInteractedFrame"`
	LastInteractedHitbox    *string    `json:"lastInteractedHitbox"`
	WorkbenchOffset         [2]float64 `json:"workbenchOffset"`
	WorkbenchZoom           float64    `json:"workbenchZoom"`

	// Navigation pointers. They are set by the engine only and may dangle
	// until the engine corrects them; selectors resolve them fail-closed.
	CurrentAnimationName     *string    `json:"currentAnimationName"`
	CurrentSequenceDirection *Direction `json:"currentSequenceDirection"`
	CurrentKeyframeIndex     *int       `json:"currentKeyframeIndex"`

	TimelineClockMillis                int64   `json:"timelineClockMillis"`
	TimelineIsPlaying                  bool    `json:"timelineIsPlaying"`
	TimelineZoomFactor                 float64 `json:"timelineZoomFactor"`
	SnapKeyframeDurations              bool    `json:"snapKeyframeDurations"`
	SnapKeyframesToOtherKeyframes      bool    `json:"snapKeyframesToOtherKeyframes"`
	SnapKeyframesToMultiplesOfDuration bool    `json:"snapKeyframesToMultiplesOfDuration"`
	KeyframeSnappingBaseDurationMillis int64   `json:"keyframeSnappingBaseDurationMillis"`

	DarkenSprites       bool `json:"darkenSprites"`
	HideSprite          bool `json:"hideSprite"`
	HideHitboxes        bool `json:"hideHitboxes"`
	HideOrigin          bool `json:"hideOrigin"`
	LockHitboxes        bool `json:"lockHitboxes"`
	PreserveAspectRatio bool `json:"preserveAspectRatio"`

	ExportSettingsBeingEdited *ExportSettings           `json:"exportSettingsBeingEdited"`
	ExportSettingsValidation  *ExportSettingsValidation `json:"exportSettingsValidation"`

	// Session fields. Empty whenever the corresponding gesture is not active.
	FramesBeingDragged         []string          `json:"framesBeingDragged"`
	FramesBeingRelocated       map[string]string `json:"framesBeingRelocated" state:"nullable"`
	KeyframesBeingDragged      []KeyframeRef     `json:"keyframesBeingDragged"`
	KeyframesBeingNudged       []KeyframeRef     `json:"keyframesBeingNudged"`
	IsDraggingKeyframeDuration bool              `json:"isDraggingKeyframeDuration"`
	HitboxesBeingNudged        []string          `json:"hitboxesBeingNudged"`
	HitboxesBeingResized       []string          `json:"hitboxesBeingResized"`
	AnimationBeingRenamed      *string           `json:"animationBeingRenamed"`
	HitboxBeingRenamed         *string           `json:"hitboxBeingRenamed"`
}

type Sheet struct {
	Frames     []Frame     `json:"frames"`
	Animations []Animation `json:"animations"`
}

type Frame struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	Selected      bool   `json:"selected"`
	FilteredOut   bool   `json:"filteredOut"`
	MissingOnDisk bool   `json:"missingOnDisk"`
}

type Animation struct {
	Name            string                 `json:"name"`
	Selected        bool                   `json:"selected"`
	FilteredOut     bool                   `json:"filteredOut"`
	Sequences       map[Direction]Sequence `json:"sequences"`
	DirectionPreset *DirectionPreset       `json:"directionPreset"`
	IsLooping       bool                   `json:"isLooping"`
}

type Sequence struct {
	Keyframes      []Keyframe `json:"keyframes"`
	DurationMillis *int64     `json:"durationMillis"`
}

type Keyframe struct {
	Frame           string   `json:"frame"`
	Name            string   `json:"name"`
	Selected        bool     `json:"selected"`
	StartTimeMillis int64    `json:"startTimeMillis"`
	DurationMillis  int64    `json:"durationMillis"`
	Offset          [2]int   `json:"offset"`
	Hitboxes        []Hitbox `json:"hitboxes"`
	// Key identifies the keyframe across reorders; array position does not.
	Key string `json:"key"`
}

type Hitbox struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	TopLeft  [2]int `json:"topLeft"`
	Size     [2]int `json:"size"`
	Key      string `json:"key"`
}

type ExportSettings struct {
	TemplateFile      string `json:"templateFile"`
	AtlasImageFile    string `json:"atlasImageFile"`
	MetadataFile      string `json:"metadataFile"`
	MetadataPathsRoot string `json:"metadataPathsRoot"`
}

// ExportSettingsValidation carries per-field validation messages computed by
// the engine. A nil field is valid.
type ExportSettingsValidation struct {
	ValidSettings          bool    `json:"validSettings"`
	TemplateFileError      *string `json:"templateFileError"`
	AtlasImageFileError    *string `json:"atlasImageFileError"`
	MetadataFileError      *string `json:"metadataFileError"`
	MetadataPathsRootError *string `json:"metadataPathsRootError"`
}

// FindDocument returns the document with the given path.
func (s *AppState) FindDocument(path string) (*Document, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Documents {
		if s.Documents[i].Path == path {
			return &s.Documents[i], true
		}
	}
	return nil, false
}

func (sh *Sheet) FindAnimation(name string) (*Animation, bool) {
	for i := range sh.Animations {
		if sh.Animations[i].Name == name {
			return &sh.Animations[i], true
		}
	}
	return nil, false
}

func (sh *Sheet) FindFrame(path string) (*Frame, bool) {
	for i := range sh.Frames {
		if sh.Frames[i].Path == path {
			return &sh.Frames[i], true
		}
	}
	return nil, false
}
