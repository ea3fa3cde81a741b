package mesh

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"
)

var parsers fastjson.ParserPool

// ParsePacket decodes one packet record from its JSON form. Field names
// follow the Meshtastic decoded-packet dictionaries; legacy numeric
// "from"/"to" fields are honored when "fromId"/"toId" are absent, and
// snake_case aliases are accepted inside user and telemetry payloads.
func ParsePacket(data []byte) (*Packet, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid packet JSON: %w", err)
	}

	pkt := &Packet{
		From:     string(v.GetStringBytes("fromId")),
		To:       string(v.GetStringBytes("toId")),
		Channel:  v.GetInt("channel"),
		RxTime:   v.GetInt64("rxTime"),
		RxRssi:   v.GetInt("rxRssi"),
		RxSnr:    v.GetFloat64("rxSnr"),
		Priority: string(v.GetStringBytes("priority")),
		WantAck:  v.GetBool("wantAck"),
	}
	if pkt.From == "" && v.Exists("from") {
		pkt.From = strconv.FormatUint(v.GetUint64("from"), 10)
	}
	if pkt.To == "" && v.Exists("to") {
		pkt.To = strconv.FormatUint(v.GetUint64("to"), 10)
	}
	if v.Exists("hopLimit") {
		h := v.GetInt("hopLimit")
		pkt.HopLimit = &h
	}
	if v.Exists("hopStart") {
		h := v.GetInt("hopStart")
		pkt.HopStart = &h
	}
	if enc := v.GetStringBytes("encrypted"); len(enc) > 0 {
		// Our own files carry base64; tolerate raw bytes from other
		// producers.
		raw, err := base64.StdEncoding.DecodeString(string(enc))
		if err != nil {
			raw = append([]byte(nil), enc...)
		}
		pkt.Encrypted = raw
	}
	if dec := v.Get("decoded"); dec != nil && dec.Type() == fastjson.TypeObject {
		pkt.Decoded = parsePayload(dec)
	}
	return pkt, nil
}

func parsePayload(v *fastjson.Value) *Payload {
	pl := &Payload{
		Portnum: string(v.GetStringBytes("portnum")),
		Text:    string(v.GetStringBytes("text")),
	}
	if pos := v.Get("position"); pos != nil && pos.Type() == fastjson.TypeObject {
		pl.Position = &Position{
			Latitude:  pos.GetFloat64("latitude"),
			Longitude: pos.GetFloat64("longitude"),
			Altitude:  pos.GetInt("altitude"),
		}
	}
	if u := v.Get("user"); u != nil && u.Type() == fastjson.TypeObject {
		pl.User = &User{
			ID:        string(u.GetStringBytes("id")),
			LongName:  firstString(u, "longName", "long_name"),
			ShortName: firstString(u, "shortName", "short_name"),
			HwModel:   firstString(u, "hwModel", "hw_model"),
		}
	}
	if t := v.Get("telemetry"); t != nil && t.Type() == fastjson.TypeObject {
		pl.Telemetry = parseTelemetry(t)
	}
	return pl
}

func parseTelemetry(v *fastjson.Value) *Telemetry {
	t := &Telemetry{}
	if dm := firstObject(v, "deviceMetrics", "device_metrics"); dm != nil {
		d := &DeviceMetrics{}
		if f, ok := firstFloat(dm, "batteryLevel", "battery_level"); ok {
			d.BatteryLevel = &f
		}
		if f, ok := firstFloat(dm, "voltage"); ok {
			d.Voltage = &f
		}
		t.Device = d
	}
	if em := firstObject(v, "environmentMetrics", "environment_metrics"); em != nil {
		e := &EnvironmentMetrics{}
		if f, ok := firstFloat(em, "temperature"); ok {
			e.Temperature = &f
		}
		t.Environment = e
	}
	return t
}

// firstString returns the first non-empty string among alias keys.
func firstString(v *fastjson.Value, keys ...string) string {
	for _, k := range keys {
		if b := v.GetStringBytes(k); len(b) > 0 {
			return string(b)
		}
	}
	return ""
}

// firstObject returns the first object value among alias keys.
func firstObject(v *fastjson.Value, keys ...string) *fastjson.Value {
	for _, k := range keys {
		if o := v.Get(k); o != nil && o.Type() == fastjson.TypeObject {
			return o
		}
	}
	return nil
}

// firstFloat returns the first numeric value among alias keys.
func firstFloat(v *fastjson.Value, keys ...string) (float64, bool) {
	for _, k := range keys {
		if n := v.Get(k); n != nil && n.Type() == fastjson.TypeNumber {
			return n.GetFloat64(), true
		}
	}
	return 0, false
}
