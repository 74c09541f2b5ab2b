package apiref

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// KnownEvents lists every EVENT_* handler name the emulator dispatches.
var KnownEvents = []string{
	"EVENT_AA_BUY",
	"EVENT_AA_EXP_GAIN",
	"EVENT_AA_GAIN",
	"EVENT_AA_LOSS",
	"EVENT_AGGRO",
	"EVENT_AGGRO_SAY",
	"EVENT_ALT_CURRENCY_LOSS",
	"EVENT_ALT_CURRENCY_MERCHANT_BUY",
	"EVENT_ALT_CURRENCY_MERCHANT_SELL",
	"EVENT_ATTACK",
	"EVENT_AUGMENT_INSERT",
	"EVENT_AUGMENT_INSERT_CLIENT",
	"EVENT_AUGMENT_ITEM",
	"EVENT_AUGMENT_REMOVE",
	"EVENT_AUGMENT_REMOVE_CLIENT",
	"EVENT_BOT_COMMAND",
	"EVENT_BOT_CREATE",
	"EVENT_CAST",
	"EVENT_CAST_BEGIN",
	"EVENT_CAST_ON",
	"EVENT_CLICKDOOR",
	"EVENT_CLICK_OBJECT",
	"EVENT_COMBAT",
	"EVENT_COMBINE",
	"EVENT_COMBINE_FAILURE",
	"EVENT_COMBINE_SUCCESS",
	"EVENT_COMBINE_VALIDATE",
	"EVENT_COMMAND",
	"EVENT_CONNECT",
	"EVENT_CONSIDER",
	"EVENT_CONSIDER_CORPSE",
	"EVENT_CRYSTAL_GAIN",
	"EVENT_CRYSTAL_LOSS",
	"EVENT_DAMAGE_GIVEN",
	"EVENT_DAMAGE_TAKEN",
	"EVENT_DEATH",
	"EVENT_DEATH_COMPLETE",
	"EVENT_DESPAWN",
	"EVENT_DESTROY_ITEM",
	"EVENT_DESTROY_ITEM_CLIENT",
	"EVENT_DISCONNECT",
	"EVENT_DISCOVER_ITEM",
	"EVENT_DROP_ITEM",
	"EVENT_DROP_ITEM_CLIENT",
	"EVENT_DUEL_LOSE",
	"EVENT_DUEL_WIN",
	"EVENT_ENTER",
	"EVENT_ENTER_AREA",
	"EVENT_ENTER_ZONE",
	"EVENT_ENTITY_VARIABLE_DELETE",
	"EVENT_ENTITY_VARIABLE_SET",
	"EVENT_ENTITY_VARIABLE_UPDATE",
	"EVENT_ENVIROMENTAL_DAMAGE",
	"EVENT_EQUIP_ITEM",
	"EVENT_EQUIP_ITEM_BOT",
	"EVENT_EQUIP_ITEM_CLIENT",
	"EVENT_EXIT",
	"EVENT_EXP_GAIN",
	"EVENT_FEIGN_DEATH",
	"EVENT_FISH_FAILURE",
	"EVENT_FISH_START",
	"EVENT_FISH_SUCCESS",
	"EVENT_FORAGE_FAILURE",
	"EVENT_FORAGE_SUCCESS",
	"EVENT_GM_COMMAND",
	"EVENT_GROUP_CHANGE",
	"EVENT_HATE_LIST",
	"EVENT_HP",
	"EVENT_INSPECT",
	"EVENT_ITEM",
	"EVENT_ITEM_CLICK",
	"EVENT_ITEM_CLICK_CAST",
	"EVENT_ITEM_CLICK_CAST_CLIENT",
	"EVENT_ITEM_CLICK_CLIENT",
	"EVENT_ITEM_ENTER_ZONE",
	"EVENT_KILLED_MERIT",
	"EVENT_LANGUAGE_SKILL_UP",
	"EVENT_LEAVE_AREA",
	"EVENT_LEVEL_DOWN",
	"EVENT_LEVEL_UP",
	"EVENT_LOOT",
	"EVENT_LOOT_ADDED",
	"EVENT_LOOT_ZONE",
	"EVENT_MEMORIZE_SPELL",
	"EVENT_MERCHANT_BUY",
	"EVENT_MERCHANT_SELL",
	"EVENT_NPC_SLAY",
	"EVENT_PAYLOAD",
	"EVENT_PLAYER_PICKUP",
	"EVENT_POPUPRESPONSE",
	"EVENT_PROXIMITY_SAY",
	"EVENT_READ_ITEM",
	"EVENT_RESPAWN",
	"EVENT_SAY",
	"EVENT_SCALE_CALC",
	"EVENT_SCRIBE_SPELL",
	"EVENT_SIGNAL",
	"EVENT_SKILL_UP",
	"EVENT_SLAY",
	"EVENT_SPAWN",
	"EVENT_SPAWN_ZONE",
	"EVENT_SPELL_BLOCKED",
	"EVENT_SPELL_EFFECT_BOT",
	"EVENT_SPELL_EFFECT_BUFFZ_TIC_BOT",
	"EVENT_SPELL_EFFECT_BUFF_TIC_CLIENT",
	"EVENT_SPELL_EFFECT_BUFF_TIC_NPC",
	"EVENT_SPELL_EFFECT_CLIENT",
	"EVENT_SPELL_EFFECT_NPC",
	"EVENT_SPELL_EFFECT_TRANSLOCAT_COMPLETE",
	"EVENT_SPELL_FADE",
	"EVENT_TARGET_CHANGE",
	"EVENT_TASKACCEPTED",
	"EVENT_TASK_BEFORE_UPDATE",
	"EVENT_TASK_COMPLETE",
	"EVENT_TASK_FAIL",
	"EVENT_TASK_STAGE_COMPLETE",
	"EVENT_TASK_UPDATE",
	"EVENT_TICK",
	"EVENT_TIMER",
	"EVENT_TIMER_PAUSE",
	"EVENT_TIMER_RESUME",
	"EVENT_TIMER_START",
	"EVENT_TIMER_STOP",
	"EVENT_UNAUGMENT_ITEM",
	"EVENT_UNEQUIP_ITEM",
	"EVENT_UNEQUIP_ITEM_BOT",
	"EVENT_UNEQUIP_ITEM_CLIENT",
	"EVENT_UNHANDLED_OPCODE",
	"EVENT_UNMEMORIZE_SPELL",
	"EVENT_UNSCRIBE_SPELL",
	"EVENT_USE_SKILL",
	"EVENT_WARP",
	"EVENT_WAYPOINT_ARRIVE",
	"EVENT_WAYPOINT_DEPART",
	"EVENT_WEAPON_PROC",
	"EVENT_ZONE",
}

// DefaultCommonEvents is the starter set shown in the Events menu before
// the user customizes it.
var DefaultCommonEvents = []string{
	"EVENT_SPAWN",
	"EVENT_SAY",
	"EVENT_ITEM",
	"EVENT_SIGNAL",
	"EVENT_TIMER",
	"EVENT_HP",
	"EVENT_COMBAT",
	"EVENT_AGGRO",
	"EVENT_DEATH",
	"EVENT_ENTER",
	"EVENT_EXIT",
	"EVENT_WAYPOINT_ARRIVE",
	"EVENT_WAYPOINT_DEPART",
}

type eventPrefsFile struct {
	CommonEvents []string `json:"common_events"`
}

// LoadEventPrefs reads the common-events preference file. Unknown event
// names are dropped; a missing or unreadable file falls back to the
// defaults. The result is always sorted and never empty.
func LoadEventPrefs(path string) []string {
	known := make(map[string]bool, len(KnownEvents))
	for _, ev := range KnownEvents {
		known[ev] = true
	}

	var common []string
	if data, err := os.ReadFile(path); err == nil {
		var f eventPrefsFile
		if json.Unmarshal(data, &f) == nil {
			for _, ev := range f.CommonEvents {
				if known[ev] {
					common = append(common, ev)
				}
			}
		}
	}
	if len(common) == 0 {
		for _, ev := range DefaultCommonEvents {
			if known[ev] {
				common = append(common, ev)
			}
		}
	}
	sort.Strings(common)
	return common
}

// SaveEventPrefs writes the common-events preference file.
func SaveEventPrefs(path string, events []string) error {
	data, err := json.MarshalIndent(eventPrefsFile{CommonEvents: events}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode event prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write event prefs: %w", err)
	}
	return nil
}
