package wire

type (
	MessageRole         int32
	FinishReason        int32
	ReasoningEffort     int32
	SearchMode          int32
	FormatType          int32
	ImageDetail         int32
	ToolMode            int32
	ToolCallType        int32
	ToolCallStatus      int32
	DeferredStatus      int32
	Modality            int32
	EmbedEncodingFormat int32
	ImageFormat         int32
	RankingMetric       int32
	IncludeOption       int32
)

const (
	RoleInvalid   MessageRole = 0
	RoleUser      MessageRole = 1
	RoleAssistant MessageRole = 2
	RoleSystem    MessageRole = 3
	RoleFunction  MessageRole = 4
	RoleTool      MessageRole = 5
)

const (
	ReasonInvalid    FinishReason = 0
	ReasonMaxLen     FinishReason = 1
	ReasonMaxContext FinishReason = 2
	ReasonStop       FinishReason = 3
	ReasonToolCalls  FinishReason = 4
	ReasonTimeLimit  FinishReason = 5
)

const (
	EffortInvalid ReasoningEffort = 0
	EffortLow     ReasoningEffort = 1
	EffortMedium  ReasoningEffort = 2
	EffortHigh    ReasoningEffort = 3
)

const (
	SearchModeOff  SearchMode = 0
	SearchModeOn   SearchMode = 1
	SearchModeAuto SearchMode = 2
)

const (
	FormatTypeInvalid    FormatType = 0
	FormatTypeText       FormatType = 1
	FormatTypeJSONObject FormatType = 2
	FormatTypeJSONSchema FormatType = 3
)

const (
	DetailInvalid ImageDetail = 0
	DetailAuto    ImageDetail = 1
	DetailLow     ImageDetail = 2
	DetailHigh    ImageDetail = 3
)

const (
	ToolModeInvalid  ToolMode = 0
	ToolModeAuto     ToolMode = 1
	ToolModeNone     ToolMode = 2
	ToolModeRequired ToolMode = 3
)

const (
	ToolCallTypeInvalid           ToolCallType = 0
	ToolCallTypeClientSide        ToolCallType = 1
	ToolCallTypeWebSearch         ToolCallType = 2
	ToolCallTypeXSearch           ToolCallType = 3
	ToolCallTypeCodeExecution     ToolCallType = 4
	ToolCallTypeCollectionsSearch ToolCallType = 5
	ToolCallTypeMCP               ToolCallType = 6
	ToolCallTypeDocumentSearch    ToolCallType = 7
)

const (
	ToolCallStatusInProgress ToolCallStatus = 0
	ToolCallStatusCompleted  ToolCallStatus = 1
	ToolCallStatusIncomplete ToolCallStatus = 2
	ToolCallStatusFailed     ToolCallStatus = 3
)

const (
	DeferredInvalid DeferredStatus = 0
	DeferredDone    DeferredStatus = 1
	DeferredExpired DeferredStatus = 2
	DeferredPending DeferredStatus = 3
)

const (
	ModalityInvalid   Modality = 0
	ModalityText      Modality = 1
	ModalityImage     Modality = 2
	ModalityEmbedding Modality = 3
)

const (
	EncodingInvalid EmbedEncodingFormat = 0
	EncodingFloat   EmbedEncodingFormat = 1
	EncodingBase64  EmbedEncodingFormat = 2
)

const (
	ImageFormatInvalid ImageFormat = 0
	ImageFormatBase64  ImageFormat = 1
	ImageFormatURL     ImageFormat = 2
)

const (
	RankingUnknown          RankingMetric = 0
	RankingL2Distance       RankingMetric = 1
	RankingCosineSimilarity RankingMetric = 2
)

const (
	IncludeInvalid                  IncludeOption = 0
	IncludeWebSearchCallOutput      IncludeOption = 1
	IncludeXSearchCallOutput        IncludeOption = 2
	IncludeCodeExecutionCallOutput  IncludeOption = 3
	IncludeCollectionsSearchOutput  IncludeOption = 4
	IncludeDocumentSearchCallOutput IncludeOption = 5
	IncludeMCPCallOutput            IncludeOption = 6
	IncludeInlineCitations          IncludeOption = 7
)
