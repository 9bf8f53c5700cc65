package deepgram

import "slices"

type Voice string

const (
	VoiceThalia    Voice = "aura-2-thalia-en"
	VoiceAndromeda Voice = "aura-2-andromeda-en"
	VoiceHelena    Voice = "aura-2-helena-en"
	VoiceApollo    Voice = "aura-2-apollo-en"
	VoiceArcas     Voice = "aura-2-arcas-en"
	VoiceAries     Voice = "aura-2-aries-en"
	VoiceAsteria   Voice = "aura-asteria-en"
	VoiceLuna      Voice = "aura-luna-en"
	VoiceStella    Voice = "aura-stella-en"
	VoiceAthena    Voice = "aura-athena-en"
	VoiceHera      Voice = "aura-hera-en"
	VoiceOrion     Voice = "aura-orion-en"
	VoicePerseus   Voice = "aura-perseus-en"
	VoiceAngus     Voice = "aura-angus-en"
	VoiceOrpheus   Voice = "aura-orpheus-en"
	VoiceHelios    Voice = "aura-helios-en"
	VoiceZeus      Voice = "aura-zeus-en"

	DefaultVoice = VoiceApollo
)

var availableVoices = []Voice{
	VoiceThalia, VoiceAndromeda, VoiceHelena, VoiceApollo, VoiceArcas, VoiceAries,
	VoiceAsteria, VoiceLuna, VoiceStella, VoiceAthena, VoiceHera, VoiceOrion,
	VoicePerseus, VoiceAngus, VoiceOrpheus, VoiceHelios, VoiceZeus,
}

// GetAvailableVoices returns the Aura voices the client accepts.
func GetAvailableVoices() []Voice {
	return slices.Clone(availableVoices)
}

func IsAvailableVoice(voice string) bool {
	return slices.Contains(availableVoices, Voice(voice))
}
