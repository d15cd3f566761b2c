// Package types defines the shared data structures for the Blackwood engine.
// This package contains only type definitions: no logic, no methods.
package types

// Difficulty selects a tuning profile.
type Difficulty string

const (
	Story    Difficulty = "story"
	Normal   Difficulty = "normal"
	Hardcore Difficulty = "hardcore"
)

// Status is the overall state of a play session.
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Lost    Status = "lost"
)

// AdversaryMode is the Phantom's behaviour state.
type AdversaryMode string

const (
	Dormant AdversaryMode = "dormant"
	Hunting AdversaryMode = "hunting"
	Stunned AdversaryMode = "stunned"
)

// Item tags.
const (
	TagKey        = "key"
	TagConsumable = "consumable"
	TagLight      = "light"
	TagQuest      = "quest"
	TagReadable   = "readable"
)

// Verb is a canonical command verb.
type Verb string

const (
	VerbMove      Verb = "move"
	VerbTake      Verb = "take"
	VerbDrop      Verb = "drop"
	VerbUse       Verb = "use"
	VerbUnlock    Verb = "unlock"
	VerbPlay      Verb = "play"
	VerbLook      Verb = "look"
	VerbInventory Verb = "inventory"
	VerbMap       Verb = "map"
	VerbJournal   Verb = "journal"
	VerbListen    Verb = "listen"
	VerbFlash     Verb = "flash"
	VerbHint      Verb = "hint"
	VerbHelp      Verb = "help"
	VerbSave      Verb = "save"
	VerbLoad      Verb = "load"
	VerbUndo      Verb = "undo"
	VerbMute      Verb = "mute"
	VerbUnmute    Verb = "unmute"
	VerbQuit      Verb = "quit"
	VerbRestart   Verb = "restart"
)

// Intent is the parsed representation of a player command, before
// targets are resolved against the world.
type Intent struct {
	Verb      Verb
	Object    string // words before the first preposition
	Target    string // words after the first preposition
	Corrected string // alias the verb was fuzzy-corrected to, if any
	Raw       string
}

// TargetKind says what a resolved target refers to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetDirection
	TargetItem
	TargetFixture
)

// Target is a resolved command target.
type Target struct {
	Kind TargetKind
	ID   string // direction name, item ID or fixture ID
	Name string // display name
}

// Command is a fully resolved player command.
type Command struct {
	Verb   Verb
	Target Target
	Extra  string // trailing input such as a code, note sequence or slot name
	Raw    string
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied. Type doubles as the
// sound-cue tag handed to the sound collaborator.
type Event struct {
	Type string
	Data map[string]any
}

// Control asks the front-end to do something outside the core.
type Control string

const (
	ControlNone   Control = ""
	ControlQuit   Control = "quit"
	ControlMute   Control = "mute"
	ControlUnmute Control = "unmute"
)

// Result is the output of a single game step.
type Result struct {
	Effects      []Effect
	Events       []Event
	Output       []string
	TurnConsumed bool
	Control      Control
	Status       Status
}

// LockDef describes what opens a locked exit: a key item or a puzzle flag.
type LockDef struct {
	Key    string // item ID
	Flag   string // flag set by a fixture
	Hidden bool   // exit is invisible while locked
	Text   string // flavour line shown when the lock blocks the player
}

// ExitDef is one directed connection out of a room.
type ExitDef struct {
	Direction string
	To        string
	Name      string // optional noun, e.g. "gate", "trapdoor"
	Lock      *LockDef
}

// RoomDef is the static definition of a room.
type RoomDef struct {
	ID          string
	Name        string
	Description string
	Exits       []ExitDef
	Dark        bool
	Sanctuary   bool   // the adversary never enters
	Secret      bool   // hidden on the map until visited
	EnterFlag   string // set the first time the player enters
	Hint        string
	MapX        int
	MapY        int
}

// ItemDef is the static definition of an item.
type ItemDef struct {
	ID             string
	Name           string
	Description    string
	Text           string // readable content, may contain {code:<fixture>}
	Aliases        []string
	Tags           []string
	Location       string // starting room, empty if revealed later
	Takeable       bool
	Value          int
	RestoreSanity  int
	RestoreBattery int
	Stuns          bool
}

// FixtureDef is an immovable puzzle object keyed by an ordered input sequence.
type FixtureDef struct {
	ID          string
	Name        string
	Room        string
	Description string
	Aliases     []string
	Verb        Verb   // VerbPlay or VerbUnlock
	Sequence    string // expected input, normalised when compared
	CodeDigits  int    // >0: sequence generated at new game
	Flag        string // set on success
	Opens       []string
	Reveals     string // item placed in the room on success
	Prompt      string
	Success     string
	Failure     string
	FailSanity  int
	Journal     string
}

// AdversaryDef configures the Phantom.
type AdversaryDef struct {
	Name           string
	Start          string
	ActivationFlag string
}

// GameDef holds game metadata.
type GameDef struct {
	Title     string
	Author    string
	Version   string
	Start     string
	Exit      string
	Intro     string
	Adversary AdversaryDef
}

// Player holds the player's runtime state.
type Player struct {
	Room       string          `json:"room"`
	Inventory  []string        `json:"inventory"`
	Sanity     int             `json:"sanity"`
	Battery    int             `json:"battery"`
	Flags      map[string]bool `json:"flags"`
	Difficulty Difficulty      `json:"difficulty"`
	Visited    map[string]bool `json:"visited"`
	Journal    []string        `json:"journal"`
}

// Adversary holds the Phantom's runtime state.
type Adversary struct {
	Room      string        `json:"room"`
	Mode      AdversaryMode `json:"mode"`
	StunTurns int           `json:"stun_turns"`
}

// RoomState is the mutable overlay of one room, aligned by index with
// the room arena in the world definitions.
type RoomState struct {
	ID       string          `json:"id"`
	Items    []string        `json:"items"`
	Unlocked map[string]bool `json:"unlocked"` // direction → unlocked
}

// State is the complete mutable game state.
type State struct {
	Player      Player            `json:"player"`
	Adversary   Adversary         `json:"adversary"`
	Rooms       []RoomState       `json:"rooms"`
	Codes       map[string]string `json:"codes"` // fixture ID → generated sequence
	Turn        int               `json:"turn"`
	Status      Status            `json:"status"`
	Ending      string            `json:"ending,omitempty"`
	RNGSeed     int64             `json:"rng_seed"`
	RNGPosition int64             `json:"rng_position"`
}

// Limits bound the player's resources.
type Limits struct {
	MaxSanity    int `yaml:"max_sanity"`
	MaxBattery   int `yaml:"max_battery"`
	MaxInventory int `yaml:"max_inventory"`
	UndoDepth    int `yaml:"undo_depth"`
}

// Rates are the base drains and costs before the difficulty multiplier.
type Rates struct {
	TurnDrain      int `yaml:"turn_drain"`
	ProximityDrain int `yaml:"proximity_drain"`
	HintDrain      int `yaml:"hint_drain"`
	BatteryNormal  int `yaml:"battery_normal"`
	BatteryDark    int `yaml:"battery_dark"`
	FlashCost      int `yaml:"flash_cost"`
}

// Profile holds the per-difficulty multipliers and adversary aggression.
type Profile struct {
	DrainMultiplier float64 `yaml:"drain_multiplier"`
	MoveChance      float64 `yaml:"move_chance"`
	Pursuit         int     `yaml:"pursuit"`
	StunTurns       int     `yaml:"stun_turns"`
	AttackDrain     int     `yaml:"attack_drain"`
	ActivationTurn  int     `yaml:"activation_turn"`
}

// SanityTiers are the upper bounds of each distorted tier.
type SanityTiers struct {
	Medium   int `yaml:"medium"`
	Low      int `yaml:"low"`
	Critical int `yaml:"critical"`
}

// Tuning is every number the rules depend on.
type Tuning struct {
	Limits        Limits                 `yaml:"limits"`
	Rates         Rates                  `yaml:"rates"`
	Profiles      map[Difficulty]Profile `yaml:"profiles"`
	Tiers         SanityTiers            `yaml:"tiers"`
	MinSimilarity float64                `yaml:"min_similarity"`
}
