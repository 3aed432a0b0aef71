package opengl

// The GLSL below is the GPU mirror of the CPU pipeline: the geometry pass
// writes the same three-plane packing the gbuffer package defines, and the
// lighting pass evaluates the same Cook-Torrance loop as lighting.Shade,
// constants and epsilons included. Keep the two in lockstep.

// geometry pass vertex shader: clip-space projection plus world-space
// position/normal for the G-buffer. staticWorld skips the model transform
// for surfaces whose vertex positions are already world space.
const geomVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 mvp;
uniform mat4 normalMatrix;
uniform mat4 model;
uniform bool staticWorld;

out vec3 fragWorldPos;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    if (staticWorld) {
        fragWorldPos = inPosition;
    } else {
        fragWorldPos = (model * vec4(inPosition, 1.0)).xyz;
    }
    fragNormal = normalize((normalMatrix * vec4(inNormal, 0.0)).xyz);
    fragUV = inUV;
}
` + "\x00"

// geometry pass fragment shader: evaluates the bound material variant and
// emits the fixed G-buffer packing. useChecker selects the procedural
// floor pattern; otherwise the fixed PBR parameter set applies.
const geomFragSrc = `
#version 410 core
in vec3 fragWorldPos;
in vec3 fragNormal;
in vec2 fragUV;

layout(location = 0) out vec4 outPosition; // world xyz + ao
layout(location = 1) out vec4 outNormal;   // world normal + roughness
layout(location = 2) out vec4 outAlbedo;   // albedo + metallic

uniform bool useChecker;

// fixed PBR variant
uniform vec3  matAlbedo;

// checker variant
uniform vec4  colour1;
uniform vec4  colour2;
uniform float checkSize;
uniform bool  checkOn;

// surface response, shared by both variants
uniform float matMetallic;
uniform float matRoughness;
uniform float matAO;

void main() {
    vec3 albedo = matAlbedo;
    if (useChecker) {
        albedo = colour1.rgb;
        if (checkOn) {
            int cx = int(floor(fragUV.x * checkSize));
            int cy = int(floor(fragUV.y * checkSize));
            if ((cx + cy) % 2 == 0) {
                albedo = colour2.rgb;
            }
        }
    }
    outPosition = vec4(fragWorldPos, matAO);
    outNormal   = vec4(normalize(fragNormal), matRoughness);
    outAlbedo   = vec4(albedo, matMetallic);
}
` + "\x00"

// lighting pass vertex shader: fullscreen triangle from gl_VertexID, no
// vertex buffers.
const lightVertSrc = `
#version 410 core
void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
    gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

// lighting pass fragment shader: exact texel fetch of the three planes,
// Cook-Torrance loop bounded by numLights, Reinhard tone map, inverse
// gamma exposure.
const lightFragSrc = `
#version 410 core
out vec4 outColor;

uniform sampler2D positionTex;
uniform sampler2D normalTex;
uniform sampler2D albedoTex;

const int MAX_LIGHTS = 20;
uniform int  numLights;
uniform vec3 lightPositions[MAX_LIGHTS];
uniform vec3 lightColors[MAX_LIGHTS];

uniform vec3  camPos;
uniform float exposure;

const float PI = 3.14159265359;

float distributionGGX(float nDotH, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float d  = nDotH * nDotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySchlickGGX(float nDotX, float roughness) {
    float r = roughness + 1.0;
    float k = r * r / 8.0;
    return nDotX / (nDotX * (1.0 - k) + k);
}

vec3 fresnelSchlick(float cosTheta, vec3 f0) {
    return f0 + (1.0 - f0) * pow(1.0 - cosTheta, 5.0);
}

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    vec4 pTexel = texelFetch(positionTex, coord, 0);
    vec4 nTexel = texelFetch(normalTex,   coord, 0);
    vec4 aTexel = texelFetch(albedoTex,   coord, 0);

    vec3  worldPos  = pTexel.xyz;
    float ao        = pTexel.w;
    float roughness = nTexel.w;
    vec3  albedo    = aTexel.rgb;
    float metallic  = aTexel.w;

    vec3 lo = vec3(0.0);
    if (dot(nTexel.xyz, nTexel.xyz) > 0.0) {
        vec3 n  = normalize(nTexel.xyz);
        vec3 v  = normalize(camPos - worldPos);
        vec3 f0 = mix(vec3(0.04), albedo, metallic);

        for (int i = 0; i < numLights; i++) {
            vec3  toLight  = lightPositions[i] - worldPos;
            float distSq   = dot(toLight, toLight);
            if (distSq == 0.0) {
                continue;
            }
            vec3 l = toLight * inversesqrt(distSq);
            vec3 h = normalize(v + l);
            vec3 radiance = lightColors[i] / distSq;

            float nDotL = max(dot(n, l), 0.0);
            float nDotV = max(dot(n, v), 0.0);
            float nDotH = max(dot(n, h), 0.0);
            float hDotV = max(dot(h, v), 0.0);

            float d = distributionGGX(nDotH, roughness);
            float g = geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness);
            vec3  f = fresnelSchlick(hDotV, f0);

            vec3 specular = d * g * f / (4.0 * nDotV * nDotL + 0.001);
            vec3 kD = (vec3(1.0) - f) * (1.0 - metallic);

            lo += (kD * albedo / PI + specular) * radiance * nDotL;
        }
    }

    vec3 color = 0.03 * albedo * ao + lo;
    color = color / (color + vec3(1.0));
    color = pow(color, vec3(1.0 / exposure));
    outColor = vec4(color, 1.0);
}
` + "\x00"
